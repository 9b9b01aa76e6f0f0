// Package scene provides the demo host classes and the YAML scene format
// used by the bluelua command.
package scene

import (
	"fmt"
	"log/slog"

	"github.com/feather-lang/bluelua/host"
)

// Actor is a damageable object. TakeDamage broadcasts OnHit, and OnDeath
// once health reaches zero.
type Actor struct {
	host.Base
	Health float64
}

var (
	// OnHitSignature is the layout of Actor.OnHit.
	OnHitSignature = &host.Function{
		Name: "OnHitSignature",
		Params: []host.Property{
			{Name: "Instigator", Kind: host.KindObject},
			{Name: "Damage", Kind: host.KindFloat},
		},
	}

	// OnDeathSignature is the layout of Actor.OnDeath.
	OnDeathSignature = &host.Function{
		Name: "OnDeathSignature",
		Params: []host.Property{
			{Name: "Victim", Kind: host.KindObject},
		},
	}
)

// ActorClass is the host class of Actor.
var ActorClass = host.NewClass("Actor", host.ObjectClass,
	&host.Function{
		Name: "TakeDamage",
		Params: []host.Property{
			{Name: "Amount", Kind: host.KindFloat},
			{Name: "Instigator", Kind: host.KindObject},
		},
		Native: func(self host.Object, params host.Params) error {
			amount, err := floatParam("TakeDamage", params, 0)
			if err != nil {
				return err
			}
			instigator, _ := params[1].(host.Object)
			return self.(*Actor).TakeDamage(amount, instigator)
		},
	},
	&host.Function{
		Name:   "GetHealth",
		Params: []host.Property{{Name: "ReturnValue", Kind: host.KindFloat, Return: true}},
		Native: func(self host.Object, params host.Params) error {
			params[0] = self.(*Actor).Health
			return nil
		},
	},
	&host.Function{
		Name:   "Heal",
		Params: []host.Property{{Name: "Amount", Kind: host.KindFloat}},
		Native: func(self host.Object, params host.Params) error {
			amount, err := floatParam("Heal", params, 0)
			if err != nil {
				return err
			}
			self.(*Actor).Heal(amount)
			return nil
		},
	},
).
	AddMulticast("OnHit", OnHitSignature).
	AddMulticast("OnDeath", OnDeathSignature)

func floatParam(fn string, params host.Params, i int) (float64, error) {
	v, ok := params[i].(float64)
	if !ok {
		return 0, fmt.Errorf("%s: %w: param %d is %T, expected float", fn, host.ErrParamType, i, params[i])
	}
	return v, nil
}

// NewActor creates an actor with the given health.
func NewActor(w *host.World, outer host.Object, name string, health float64) *Actor {
	a := host.NewObject[Actor](w, outer, ActorClass, name)
	a.Health = health
	return a
}

// IsDead reports whether the actor has no health left.
func (a *Actor) IsDead() bool {
	return a.Health <= 0
}

// TakeDamage lowers health by amount. Dead actors ignore damage.
func (a *Actor) TakeDamage(amount float64, instigator host.Object) error {
	if a.IsDead() {
		return nil
	}
	if amount < 0 {
		return fmt.Errorf("%s: negative damage %v", a.Name(), amount)
	}

	a.Health -= amount
	if a.Health < 0 {
		a.Health = 0
	}
	a.World().Logger().Debug("actor hit",
		slog.String("actor", a.Name()),
		slog.Float64("damage", amount),
		slog.Float64("health", a.Health))

	if err := a.Multicast("OnHit").Broadcast(host.Params{instigator, amount}); err != nil {
		return err
	}
	if a.IsDead() {
		return a.Multicast("OnDeath").Broadcast(host.Params{host.Object(a)})
	}
	return nil
}

// Heal raises health by amount. Dead actors stay dead.
func (a *Actor) Heal(amount float64) {
	if a.IsDead() || amount <= 0 {
		return
	}
	a.Health += amount
}
