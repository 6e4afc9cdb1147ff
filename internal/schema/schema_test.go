package schema

import (
	"strings"
	"testing"
)

func TestDDL_ContainsAllTables(t *testing.T) {
	ddl := DDL()
	for _, table := range []string{"province_names", "patients", "doctors", "admissions"} {
		if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("DDL missing table %s", table)
		}
	}
}

func TestDDL_DependencyOrder(t *testing.T) {
	ddl := DDL()
	provinces := strings.Index(ddl, "province_names")
	patients := strings.Index(ddl, "CREATE TABLE IF NOT EXISTS patients")
	admissions := strings.Index(ddl, "CREATE TABLE IF NOT EXISTS admissions")

	// Referenced tables must be declared before their referrers.
	if !(provinces < patients && patients < admissions) {
		t.Errorf("DDL not in dependency order: provinces=%d patients=%d admissions=%d",
			provinces, patients, admissions)
	}
}

func TestPromptsEmbedSchema(t *testing.T) {
	for name, text := range map[string]string{
		"SystemPrompt":    SystemPrompt(),
		"ToolDescription": ToolDescription(),
	} {
		if !strings.Contains(text, DDL()) {
			t.Errorf("%s does not embed the full DDL", name)
		}
	}

	if !strings.Contains(SystemPrompt(), ToolName) {
		t.Errorf("system prompt never names the %s tool", ToolName)
	}
}
