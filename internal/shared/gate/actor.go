package gate

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorKind distinguishes the event owner from on-site staff.
type ActorKind string

const (
	KindOwner ActorKind = "OWNER"
	KindStaff ActorKind = "STAFF"
)

// Capability names a single permission flag granted to an actor.
type Capability string

const (
	CapCheckIn        Capability = "checkin"
	CapRedeemSouvenir Capability = "redeem:SOUVENIR"
	CapRedeemSnack    Capability = "redeem:SNACK"
	CapRedeemLounge   Capability = "redeem:LOUNGE"
)

// contextKey is the gin context key the auth middleware stores the actor under.
const contextKey = "gate_actor"

// Actor is the resolved identity supplied by the auth collaborator. The core
// treats it as an opaque fact: it never re-derives roles or re-validates the
// credential that produced it.
type Actor struct {
	ID           uuid.UUID
	Kind         ActorKind
	EventID      uuid.UUID
	Capabilities map[Capability]bool
}

// Can reports whether the actor holds the given capability. Event owners
// implicitly hold every capability for their own event.
func (a Actor) Can(c Capability) bool {
	if a.Kind == KindOwner {
		return true
	}
	return a.Capabilities[c]
}

// CanRedeem reports whether the actor may redeem the given benefit type.
func (a Actor) CanRedeem(benefitType string) bool {
	return a.Can(Capability("redeem:" + benefitType))
}

// IsOwner reports whether the actor is the event owner.
func (a Actor) IsOwner() bool {
	return a.Kind == KindOwner
}

// Store places the actor in the request context for downstream handlers.
func Store(c *gin.Context, actor Actor) {
	c.Set(contextKey, actor)
}

// FromContext retrieves the actor placed in the context by the auth
// middleware. The second return is false when no actor was resolved.
func FromContext(c *gin.Context) (Actor, bool) {
	v, exists := c.Get(contextKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
