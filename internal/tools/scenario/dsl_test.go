package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenarioFixture(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.lua")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := writeScenarioFixture(t, `
local scene = Scenario.new{name = "morning shift"}
scene:employee{ref = "ana", first = "Ana", last = "García", email = "ana@example.com"}
scene:clock_in{employee = "ana"}
scene:advance{minutes = 90}
scene:clock_out{employee = "ana", expect_worked_minutes = 90}
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("LoadScenarioFromFile: %v", err)
	}
	if scenario.Name != "morning shift" {
		t.Fatalf("Name = %q, want %q", scenario.Name, "morning shift")
	}
	if len(scenario.Steps) != 4 {
		t.Fatalf("got %d steps, want 4", len(scenario.Steps))
	}
	if scenario.Steps[0].Kind != stepEmployee {
		t.Errorf("Steps[0].Kind = %q, want %q", scenario.Steps[0].Kind, stepEmployee)
	}
	if got := scenario.Steps[0].Args["email"]; got != "ana@example.com" {
		t.Errorf("Steps[0].Args[email] = %v, want ana@example.com", got)
	}
	if got := scenario.Steps[2].Args["minutes"]; got != 90 {
		t.Errorf("Steps[2].Args[minutes] = %v (%T), want int 90", got, got)
	}
	if got := scenario.Steps[3].Args["expect_worked_minutes"]; got != 90 {
		t.Errorf("Steps[3].Args[expect_worked_minutes] = %v, want 90", got)
	}
}

func TestLoadScenarioDefaultsNameToFile(t *testing.T) {
	path := writeScenarioFixture(t, `
local scene = Scenario.new()
scene:clock_in{employee = "ana"}
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("LoadScenarioFromFile: %v", err)
	}
	if scenario.Name != "fixture" {
		t.Fatalf("Name = %q, want %q", scenario.Name, "fixture")
	}
}

func TestLoadScenarioRejectsNonScenarioReturn(t *testing.T) {
	path := writeScenarioFixture(t, `return 42`)

	if _, err := LoadScenarioFromFile(path); err == nil {
		t.Fatal("expected error for a script that does not return a Scenario")
	}
}

func TestLoadScenarioSurfacesLuaErrors(t *testing.T) {
	path := writeScenarioFixture(t, `this is not lua`)

	if _, err := LoadScenarioFromFile(path); err == nil {
		t.Fatal("expected error for an invalid script")
	}
}

func TestLoadScenarioConvertsNestedTables(t *testing.T) {
	path := writeScenarioFixture(t, `
local scene = Scenario.new{name = "nested"}
scene:request{employee = "ana", kind = "vacation", days = 5, note = "trip", tags = {"summer", "paid"}}
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("LoadScenarioFromFile: %v", err)
	}
	tags, ok := scenario.Steps[0].Args["tags"].([]any)
	if !ok {
		t.Fatalf("tags = %T, want []any", scenario.Steps[0].Args["tags"])
	}
	if len(tags) != 2 || tags[0] != "summer" {
		t.Fatalf("tags = %v, want [summer paid]", tags)
	}
}
