// Package host is a small reflected object system for applications that embed
// a script runtime.
//
// Objects are created inside a [World] with [NewObject] and are described by a
// [Class], which declares the object's [Function]s and multicast delegate
// properties. Every call into an object goes through [Object.ProcessEvent] with
// a raw [Params] block laid out by the function's [Property] list, so an
// object can intercept any call by name before the default native dispatch.
//
// Events are raised through [MulticastDelegate]s: each binding names a target
// object and a function on its class, and Broadcast delivers the same
// parameter block to every live target.
//
//	world := host.NewWorld(nil)
//	defer world.Close()
//
//	onOpen := &host.Function{Name: "OnOpenSignature", Params: []host.Property{
//	    {Name: "Who", Kind: host.KindObject},
//	}}
//	doorClass := host.NewClass("Door", host.ObjectClass).AddMulticast("OnOpen", onOpen)
//
//	door := host.NewObject[Door](world, nil, doorClass, "FrontDoor")
//	door.Multicast("OnOpen").Broadcast(host.Params{nil})
//
// Destroying an object destroys every object created under it first; each
// object gets a BeginDestroy call before it is removed.
package host
