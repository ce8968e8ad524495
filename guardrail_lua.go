package mindful

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ──────────────────────────────────────────────
// Lua Guardrails — operator-defined safety rules
// ──────────────────────────────────────────────

// NewLuaGuardrail compiles a Lua script into a GuardrailFunc so
// deployments can add safety rules without recompiling. The script must
// define a global function:
//
//	function check(text)
//	    if string.find(text, "forbidden") then
//	        return false, "contains forbidden content"
//	    end
//	    return true, ""
//	end
//
// Each invocation runs in a fresh Lua state; scripts cannot share state
// between calls. A script error at check time fails closed.
func NewLuaGuardrail(name, script string) (GuardrailFunc, error) {
	// Validate the script once up front.
	state := lua.NewState()
	defer state.Close()
	if err := state.DoString(script); err != nil {
		return nil, fmt.Errorf("lua guardrail %q: %w", name, err)
	}
	if _, ok := state.GetGlobal("check").(*lua.LFunction); !ok {
		return nil, fmt.Errorf("lua guardrail %q: script must define function check(text)", name)
	}

	return func(ctx *GuardrailContext) *GuardrailResult {
		passed, reason, err := runLuaCheck(script, ctx.Text)
		if err != nil {
			return &GuardrailResult{
				Passed:        false,
				Reason:        fmt.Sprintf("script error: %v", err),
				GuardrailName: name,
			}
		}
		return &GuardrailResult{Passed: passed, Reason: reason, GuardrailName: name}
	}, nil
}

func runLuaCheck(script, text string) (bool, string, error) {
	state := lua.NewState()
	defer state.Close()

	if err := state.DoString(script); err != nil {
		return false, "", err
	}

	fn, ok := state.GetGlobal("check").(*lua.LFunction)
	if !ok {
		return false, "", fmt.Errorf("check is not a function")
	}

	if err := state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    2,
		Protect: true,
	}, lua.LString(text)); err != nil {
		return false, "", err
	}

	reasonVal := state.Get(-1)
	passedVal := state.Get(-2)
	state.Pop(2)

	passed := lua.LVAsBool(passedVal)
	reason := ""
	if s, ok := reasonVal.(lua.LString); ok {
		reason = string(s)
	}
	return passed, reason, nil
}
