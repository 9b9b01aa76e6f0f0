// Package bluelua binds Lua scripts to a reflected host object system.
//
// # Overview
//
// bluelua embeds a Lua 5.1 VM (gopher-lua) next to a [host.World] of
// reflected objects. It provides:
//
//   - Host objects in Lua, with their functions callable as methods
//   - Multicast delegates that scripts can subscribe to
//   - FunctionDelegate, a host object wrapping a Lua function so the host
//     event system can call into scripts
//   - A registry reference arena that pins Lua values held by Go
//
// # Quick Start
//
//	world := host.NewWorld(nil)
//	defer world.Close()
//
//	s := bluelua.New(world, bluelua.Config{})
//	defer s.Close()
//
//	s.SetGlobalObject("hero", hero)
//	err := s.DoString(`
//	    hero.OnHit:Add(function(instigator, damage)
//	        print(hero.Name, "took", damage)
//	    end)
//	`)
//
// # Function Delegates
//
// Scripts create a FunctionDelegate explicitly with the global
// CreateFunctionDelegate:
//
//	local fd = CreateFunctionDelegate(owner, function(...) end)
//	local fd = CreateFunctionDelegate(owner, self, self.Method)
//
// In the second form self is passed as the first argument on every call.
// The delegate lives under owner and is destroyed with it. Go code uses
// [NewFunctionDelegate] with an explicit [Callable].
//
// A FunctionDelegate answers exactly one event, [DelegateFunctionName]. Host
// delegates bind it under that name; every other event goes to the default
// handler. Calling an unbound delegate logs a warning and does nothing.
//
// # Registry References
//
// Lua values held by Go are pinned with [State.Ref] and released with
// [State.Unref]. A FunctionDelegate owns the references it holds and releases
// them when cleared, rebound or destroyed. [State.RegistryStats] reports pin
// and release counts.
//
// # Supported Type Conversions
//
// Host to Lua:
//   - bool → boolean
//   - int, float → number
//   - string → string
//   - host.Object → userdata (nil for nil or destroyed objects)
//
// Lua to host:
//   - any value → bool (Lua truthiness)
//   - number → int (must be integral), float
//   - string or number → string
//   - userdata or nil → host.Object
package bluelua
