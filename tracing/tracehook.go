package tracing

import (
	"fmt"
	"reflect"

	"github.com/profugus/mctransport/transport"
)

// CollectTrace lets the tracer collect traces from a transporter.
func CollectTrace(domain *transport.Transporter, tracer Tracer) {
	for _, hook := range domain.Hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"transporter %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook forwards transporter hook positions to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx transport.HookCtx) {
	name := ctx.Domain.Name()

	switch ctx.Pos {
	case transport.HookPosBeforeRound:
		h.t.StartRound(name, ctx.Detail.(transport.RoundStats))
	case transport.HookPosAfterRound:
		h.t.EndRound(name, ctx.Detail.(transport.RoundStats))
	case transport.HookPosTransportEnd:
		h.t.EndTransport(name, ctx.Detail.(transport.Summary))
	}
}
