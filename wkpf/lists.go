package wkpf

const (
	wuClassEntrySize  = 3
	wuObjectEntrySize = 4

	// maxListedClasses and maxListedObjects are how many entries fit in one
	// reply frame after the list header.
	maxListedClasses = (MaxBodyLen - 2) / wuClassEntrySize
	maxListedObjects = (MaxBodyLen - 3) / wuObjectEntrySize
)

// handleGetWuClassList serves GET_WUCLASS_LIST. The page argument is ignored and
// everything is returned as a single page, cut to what one frame can carry.
func (d *Dispatcher) handleGetWuClassList(_ uint32, req Message, reply ReplyFunc) {
	classes := d.registry.Classes()
	if len(classes) > maxListedClasses {
		d.logger.Warn("class list truncated to one page", "classes", len(classes), "listed", maxListedClasses)
		classes = classes[:maxListedClasses]
	}

	body := make([]byte, 0, 2+wuClassEntrySize*len(classes))
	body = append(body, 1, byte(len(classes)))
	for _, c := range classes {
		body = append(body, byte(c.ID>>8), byte(c.ID), 0)
	}

	reply(NewReply(req, body))
}

// handleGetWuObjectList serves GET_WUOBJECT_LIST as a single page.
func (d *Dispatcher) handleGetWuObjectList(_ uint32, req Message, reply ReplyFunc) {
	objects := d.registry.Objects()
	if len(objects) > maxListedObjects {
		d.logger.Warn("object list truncated to one page", "objects", len(objects), "listed", maxListedObjects)
		objects = objects[:maxListedObjects]
	}

	body := make([]byte, 0, 3+wuObjectEntrySize*len(objects))
	body = append(body, 0, 1, byte(len(objects)))
	for _, o := range objects {
		body = append(body, o.Index, byte(o.ClassID>>8), byte(o.ClassID), o.Index)
	}

	reply(NewReply(req, body))
}
