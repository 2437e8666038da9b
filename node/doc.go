// Package node runs a WuKong node session over a UDP tunnel to a gateway.
//
// A [Session] drives the registration handshake and, once operational, hands
// forwarded WKPF commands to a [wkpf.Dispatcher]. An [Endpoint] binds a session
// to a UDP socket and runs its receive loop.
//
// # Handshake
//
//	Unregistered    --Start: registration probe-->            AwaitingNodeID
//	AwaitingNodeID  --any synced frame: node id, ID request--> AwaitingAddress
//	AwaitingAddress --IDACK from master: address-->            Operational
//
// Example Usage:
//
//	cfg, err := node.NewConfig("192.168.1.10", "192.168.1.20", 3000,
//	    node.WithIdentityStore(identity.NewFileStore("udpwkpf.json")),
//	)
//	if err != nil {
//	    // handle error
//	}
//
//	registry := wkpf.NewRegistry()
//	_ = registry.AddClass(wkpf.WuClass{ID: 1007, Name: "Magnetic"})
//	_, _ = registry.AddObject(1007)
//
//	ep, err := node.NewEndpoint(ctx, cfg, registry)
//	if err != nil {
//	    // handle error
//	}
//	defer ep.Close()
//
//	if err := ep.Open(true); err != nil {
//	    // handle error
//	}
package node
