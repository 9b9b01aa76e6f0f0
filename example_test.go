package bluelua_test

import (
	"fmt"
	"os"

	"github.com/feather-lang/bluelua"
	"github.com/feather-lang/bluelua/host"
)

// Door is a host object with an OnOpen delegate.
type Door struct {
	host.Base
}

var (
	onOpenSignature = &host.Function{
		Name:   "OnOpenSignature",
		Params: []host.Property{{Name: "By", Kind: host.KindString}},
	}
	doorClass = host.NewClass("Door", host.ObjectClass).AddMulticast("OnOpen", onOpenSignature)
)

// Scripts subscribe to host delegates with Add. Each subscription is a
// FunctionDelegate living under the door.
func Example() {
	world := host.NewWorld(nil)
	defer world.Close()

	s := bluelua.New(world, bluelua.Config{Stdout: os.Stdout})
	defer s.Close()

	door := host.NewObject[Door](world, nil, doorClass, "FrontDoor")
	s.SetGlobalObject("door", door)

	err := s.DoString(`
		door.OnOpen:Add(function(by)
			print(door.Name, "opened by", by)
		end)
	`)
	if err != nil {
		fmt.Println(err)
		return
	}

	door.Multicast("OnOpen").Broadcast(host.Params{"alice"})
	// Output: FrontDoor	opened by	alice
}

// A receiver passed before the function becomes its first argument.
func ExampleCreateFunctionDelegateLua() {
	world := host.NewWorld(nil)
	defer world.Close()

	s := bluelua.New(world, bluelua.Config{Stdout: os.Stdout})
	defer s.Close()

	door := host.NewObject[Door](world, nil, doorClass, "BackDoor")
	s.SetGlobalObject("door", door)

	err := s.DoString(`
		local guard = {name = "guard"}
		function guard:onOpen(by)
			print(self.name, "saw", by)
		end
		fd = CreateFunctionDelegate(door, guard, guard.onOpen)
		door.OnOpen:Add(fd)
	`)
	if err != nil {
		fmt.Println(err)
		return
	}

	door.Multicast("OnOpen").Broadcast(host.Params{"bob"})
	world.Destroy(door)
	fmt.Println("live references:", s.RegistryStats().Live)
	// Output:
	// guard	saw	bob
	// live references: 0
}

func ExampleNewFunctionDelegate() {
	world := host.NewWorld(nil)
	defer world.Close()

	s := bluelua.New(world, bluelua.Config{Stdout: os.Stdout})
	defer s.Close()

	owner := host.NewObject[Door](world, nil, doorClass, "Owner")
	if err := s.DoString(`function greet(by) print("hello", by) end`); err != nil {
		fmt.Println(err)
		return
	}

	fd, err := bluelua.NewFunctionDelegate(owner, s, onOpenSignature, bluelua.Callable{
		Function: s.LState().GetGlobal("greet"),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fd.ProcessEvent(bluelua.FunctionDelegateClass.FindFunction(bluelua.DelegateFunctionName), host.Params{"carol"})
	fmt.Println(fd.Name(), fd.SignatureName())
	// Output:
	// hello	carol
	// LuaFunctionDelegate_0 OnOpenSignature
}
