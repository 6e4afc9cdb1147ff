// Package schema holds the canonical description of the demo hospital
// database. The DDL text is the single source of truth: it creates the
// tables in the store, grounds the agent's system prompt, and is embedded
// verbatim in the get_from_db tool description so the model always sees
// the same schema it queries.
package schema

// ToolName is the single capability exposed to the agent.
const ToolName = "get_from_db"

const PatientsTable = `
CREATE TABLE IF NOT EXISTS patients (
    patient_id INTEGER PRIMARY KEY,
    first_name VARCHAR(30) NOT NULL,
    last_name VARCHAR(30) NOT NULL,
    gender CHAR(1) NOT NULL,
    birth_date DATE NOT NULL,
    city VARCHAR(30),
    province_id CHAR(2),
    allergies VARCHAR(80),
    height DECIMAL(3,0),
    weight DECIMAL(4,0),
    FOREIGN KEY (province_id) REFERENCES province_names(province_id)
);`

const DoctorsTable = `
CREATE TABLE IF NOT EXISTS doctors (
    doctor_id INTEGER PRIMARY KEY,
    first_name VARCHAR(30) NOT NULL,
    last_name VARCHAR(30) NOT NULL,
    specialty VARCHAR(25)
);`

const AdmissionsTable = `
CREATE TABLE IF NOT EXISTS admissions (
    patient_id INTEGER NOT NULL,
    admission_date DATE NOT NULL,
    discharge_date DATE,
    diagnosis VARCHAR(50),
    attending_doctor_id INTEGER,
    FOREIGN KEY (patient_id) REFERENCES patients(patient_id),
    FOREIGN KEY (attending_doctor_id) REFERENCES doctors(doctor_id)
);`

const ProvinceNamesTable = `
CREATE TABLE IF NOT EXISTS province_names (
    province_id CHAR(2) PRIMARY KEY,
    province_name VARCHAR(30) NOT NULL
);`

// DDL returns the full schema as one blob, in dependency order.
func DDL() string {
	return ProvinceNamesTable + "\n" + PatientsTable + "\n" + DoctorsTable + "\n" + AdmissionsTable
}

// SystemPrompt is prepended to conversations that carry no system message.
// It mirrors the rules the chat UI seeds its history with.
func SystemPrompt() string {
	return `You are an expert SQLite text-to-SQL assistant.

Rules:
1) ALWAYS call the "get_from_db" tool with a complete SQLite query.
2) Use double quotes for all identifiers: "patients", "first_name", etc.
3) Prefer SELECT queries that return exactly what the user asked for.
4) DO NOT add commentary, explanation, or markdown. The tool returns JSON; that JSON must be the final output.
5) If the user asks for the SQL itself, still call the tool with that SQL so the server can return structured JSON.

Database schema:
` + DDL() + "\n"
}

// ToolDescription is the textual contract shown to the agent runtime for
// the get_from_db capability.
func ToolDescription() string {
	return `Run a SQL query against the SQLite database and return ONLY JSON.

You MUST:
- Produce a complete, syntactically valid SQLite query.
- Prefer SELECT queries.
- Never explain or summarize.
- Always return the tool's JSON result directly.

Schema (quotes are important for SQLite compatibility):
` + DDL() + "\n"
}
