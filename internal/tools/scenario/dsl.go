// Package scenario loads Lua punch-clock scripts and replays them
// against in-process workforce stores. Scripts build a step list with
// a small DSL and the runner executes the steps in order, checking
// the expectations each step carries.
package scenario

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	lua "github.com/Shopify/go-lua"
)

const scenarioTypeName = "timelogic.scenario"

// Step is one recorded DSL call with its argument table.
type Step struct {
	Kind string
	Args map[string]any
}

// Scenario is an ordered step list produced by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// LoadScenarioFromFile runs a Lua script and returns the scenario it
// builds. The script must return the Scenario userdata. An unnamed
// scenario takes the file's base name.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", path, err)
	}

	scenario, ok := state.ToUserData(-1).(*Scenario)
	if !ok {
		return nil, errors.New("scenario script must return a Scenario")
	}
	if scenario.Name == "" {
		base := filepath.Base(path)
		scenario.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return scenario, nil
}

// registerScenarioType installs the Scenario metatable and the global
// constructor table.
func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods(), 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "new", Function: scenarioNew},
	}, 0)
	state.SetGlobal("Scenario")
}

func scenarioMethods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "employee", Function: scenarioStep(stepEmployee)},
		{Name: "clock_in", Function: scenarioStep(stepClockIn)},
		{Name: "pause", Function: scenarioStep(stepPause)},
		{Name: "resume", Function: scenarioStep(stepResume)},
		{Name: "clock_out", Function: scenarioStep(stepClockOut)},
		{Name: "advance", Function: scenarioStep(stepAdvance)},
		{Name: "expect_state", Function: scenarioStep(stepExpectState)},
		{Name: "request", Function: scenarioStep(stepRequest)},
		{Name: "approve", Function: scenarioStep(stepApprove)},
		{Name: "reject", Function: scenarioStep(stepReject)},
	}
}

func scenarioNew(state *lua.State) int {
	scenario := &Scenario{}
	if state.Top() >= 1 && state.IsTable(1) {
		opts := tableToMap(state, 1)
		if name, ok := opts["name"].(string); ok {
			scenario.Name = name
		}
	}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

// scenarioStep records a method call as a step. Every DSL method has
// the same shape: an optional argument table after the receiver.
func scenarioStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: optionalTable(state, 2)})
		return 0
	}
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.Top() < index || state.IsNil(index) {
		return map[string]any{}
	}
	lua.CheckType(state, index, lua.TypeTable)
	return tableToMap(state, index)
}

// tableToMap copies the string-keyed pairs of the table at index into
// a Go map.
func tableToMap(state *lua.State, index int) map[string]any {
	result := map[string]any{}
	state.PushNil()
	for state.Next(index) {
		if key, ok := state.ToString(-2); ok {
			result[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return result
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo converts a table into a slice when its keys are the
// contiguous integers starting at 1, and into a map otherwise.
func tableToGo(state *lua.State, index int) any {
	abs := state.AbsIndex(index)
	asMap := map[string]any{}
	var asList []any
	listOK := true

	state.PushNil()
	for state.Next(abs) {
		switch state.TypeOf(-2) {
		case lua.TypeNumber:
			key, _ := state.ToNumber(-2)
			if listOK && key == float64(len(asList)+1) {
				asList = append(asList, luaToGo(state, -1))
			} else {
				listOK = false
			}
			asMap[fmt.Sprintf("%v", normalizeNumber(key))] = luaToGo(state, -1)
		default:
			listOK = false
			if key, ok := state.ToString(-2); ok {
				asMap[key] = luaToGo(state, -1)
			}
		}
		state.Pop(1)
	}

	if listOK && len(asList) > 0 {
		return asList
	}
	return asMap
}

// normalizeNumber keeps whole Lua numbers as ints so step arguments
// compare cleanly.
func normalizeNumber(value float64) any {
	if value == float64(int(value)) {
		return int(value)
	}
	return value
}
