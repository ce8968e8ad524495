package mindful

import (
	"log"
	"time"
)

// ──────────────────────────────────────────────
// Middleware — onion-model pipeline around Converse
// ──────────────────────────────────────────────
//
// Each middleware wraps the next layer. Call next() to proceed; skip it
// to intercept the turn before the agent runs.
//
// Usage:
//
//	session.Use(func(ctx *mindful.MiddlewareContext, next mindful.NextFunc) {
//	    log.Println("before")
//	    next()
//	    log.Println("after")
//	})

// NextFunc proceeds to the next middleware or the core handler.
type NextFunc func()

// MiddlewareFunc is the signature for all middleware functions.
type MiddlewareFunc func(ctx *MiddlewareContext, next NextFunc)

// MiddlewareContext is the shared context flowing through the pipeline.
type MiddlewareContext struct {
	// Session is the conversation being served.
	Session *Session
	// Agent handles the turn.
	Agent *Agent
	// Input is the user message.
	Input string
	// Result is set once the core handler has run.
	Result *AgentLoopResult
	// Extra is an arbitrary map for middleware to attach/read data.
	Extra map[string]interface{}
	// Handled is set to true when the core handler has been reached.
	Handled bool
}

// MiddlewarePipeline builds and executes an onion-model call chain.
type MiddlewarePipeline struct {
	middlewares []MiddlewareFunc
}

// NewMiddlewarePipeline creates an empty pipeline.
func NewMiddlewarePipeline() *MiddlewarePipeline {
	return &MiddlewarePipeline{}
}

// Use appends a middleware to the pipeline.
func (p *MiddlewarePipeline) Use(mw MiddlewareFunc) {
	p.middlewares = append(p.middlewares, mw)
}

// Len returns the number of registered middlewares.
func (p *MiddlewarePipeline) Len() int {
	return len(p.middlewares)
}

// Execute runs the full pipeline ending with coreHandler.
//
// The pipeline builds an onion chain:
//
//	mw[0].before → mw[1].before → core → mw[1].after → mw[0].after
func (p *MiddlewarePipeline) Execute(ctx *MiddlewareContext, coreHandler func()) {
	if len(p.middlewares) == 0 {
		coreHandler()
		return
	}

	chain := coreHandler
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		mw := p.middlewares[i]
		next := chain
		chain = func() {
			mw(ctx, next)
		}
	}

	chain()
}

// ─── Built-in middleware ───

// TurnLoggingMiddleware logs each turn's outcome and duration.
func TurnLoggingMiddleware() MiddlewareFunc {
	return func(ctx *MiddlewareContext, next NextFunc) {
		start := time.Now()
		next()
		status := "unhandled"
		if ctx.Result != nil {
			status = ctx.Result.StoppedReason
		}
		log.Printf("[Middleware] Turn done | session=%s agent=%s status=%s elapsed=%s",
			ctx.Session.ID, ctx.Agent.ID, status, time.Since(start).Round(time.Millisecond))
	}
}

// CrisisEscalationMiddleware invokes escalate whenever the turn's
// guardrail metadata carries a crisis assessment. The hook runs after
// the agent has answered so escalation never delays the response.
func CrisisEscalationMiddleware(escalate func(sessionID string, assessment *CrisisAssessment)) MiddlewareFunc {
	return func(ctx *MiddlewareContext, next NextFunc) {
		next()
		if ctx.Result == nil {
			return
		}
		if a, ok := ctx.Result.Metadata["crisis_assessment"].(*CrisisAssessment); ok && a.IsCrisis {
			escalate(ctx.Session.ID, a)
		}
	}
}
