package agent

import "testing"

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"fenced block",
			"Here is the query:\n```sql\nSELECT COUNT(*) FROM patients;\n```\nHope that helps.",
			"SELECT COUNT(*) FROM patients;",
		},
		{
			"fenced block case insensitive label",
			"```SQL\nSELECT 1\n```",
			"SELECT 1",
		},
		{
			"multiline fenced block",
			"```sql\nSELECT p.first_name\nFROM patients p\nWHERE p.city = 'Toronto'\n```",
			"SELECT p.first_name\nFROM patients p\nWHERE p.city = 'Toronto'",
		},
		{
			"bare select line",
			"You could run this:\nSELECT * FROM doctors",
			"SELECT * FROM doctors",
		},
		{
			"select line takes rest of text",
			"Try:\nSELECT first_name\nFROM patients\nORDER BY 1",
			"SELECT first_name\nFROM patients\nORDER BY 1",
		},
		{
			"with keyword",
			"with c as (select 1) select * from c",
			"with c as (select 1) select * from c",
		},
		{
			"indented select",
			"  SELECT 1",
			"SELECT 1",
		},
		{
			"fence wins over earlier select line",
			"SELECT this_is_prose\n```sql\nSELECT 2\n```",
			"SELECT 2",
		},
		{
			"keyword must start the line",
			"I would never SELECT anything here",
			"",
		},
		{
			"no signal",
			"I cannot answer that from the database.",
			"",
		},
		{
			"empty text",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSQL(tt.text); got != tt.want {
				t.Errorf("ExtractSQL(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
