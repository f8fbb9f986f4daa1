// Package pipeline runs incoming requests through an ordered list of gates before they reach a handler.
//
// A gate either lets the request proceed (nil error) or rejects it. The first rejection stops the
// chain: later gates and the handler never run, and the rejecting gate's error is returned as is.
package pipeline

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// Gate is a single request check.
type Gate interface {
	Name() string
	Check(c *fiber.Ctx) error
}

// GateFunc adapts a function to Gate.
type GateFunc struct {
	GateName string
	Fn       func(c *fiber.Ctx) error
}

func (g GateFunc) Name() string { return g.GateName }

func (g GateFunc) Check(c *fiber.Ctx) error { return g.Fn(c) }

// RejectFunc observes a rejection before it is returned.
type RejectFunc func(gate Gate, err error)

// Chain is an ordered, immutable list of gates.
type Chain struct {
	gates []Gate
}

// NewChain copies gates in the order given.
func NewChain(gates ...Gate) Chain {
	return Chain{gates: append([]Gate(nil), gates...)}
}

// Gates returns a copy of the chain's gates.
func (ch Chain) Gates() []Gate {
	return append([]Gate(nil), ch.gates...)
}

// Len returns the number of gates.
func (ch Chain) Len() int {
	return len(ch.gates)
}

// Handler runs the gates in order and then terminal. The request's user context is checked
// before every step so a cancelled or timed out request stops at the next gate boundary.
// When the request fails at any step, cleanups registered on its RequestContext are run.
func (ch Chain) Handler(terminal fiber.Handler, onReject RejectFunc) fiber.Handler {
	gates := ch.gates
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if err != nil {
				FromCtx(c).release()
			}
		}()

		for _, gate := range gates {
			if err := c.UserContext().Err(); err != nil {
				return apperrors.NewRequestAborted(err).WithOrigin(gate.Name())
			}
			if err := gate.Check(c); err != nil {
				if onReject != nil {
					onReject(gate, err)
				}
				return err
			}
		}
		if err := c.UserContext().Err(); err != nil {
			return apperrors.NewRequestAborted(err).WithOrigin("Handler")
		}
		return terminal(c)
	}
}
