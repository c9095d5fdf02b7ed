package sqlite

// Migration v1 creates the full AB-EAM schema. Enum fields are CHECK
// constrained at the storage layer in addition to domain validation.
const schemaV1Up = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('PRODUCT_PEOPLE', 'CLIENT_MANAGER')),
	status TEXT NOT NULL CHECK (status IN ('PENDING', 'ACTIVE', 'INACTIVE')),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE registration_requests (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('PRODUCT_PEOPLE', 'CLIENT_MANAGER')),
	status TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	approved_by TEXT,
	approved_at TEXT,
	rejection_reason TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (approved_by) REFERENCES users(id)
);

CREATE TABLE programs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	created_by TEXT NOT NULL,
	stakeholders TEXT NOT NULL DEFAULT '[]',
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('PENDING', 'LIVE', 'STOPPED', 'ARCHIVED')),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE contact_users (
	id TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE enrollment_requests (
	id TEXT PRIMARY KEY,
	program_id TEXT NOT NULL,
	client_name TEXT NOT NULL,
	account_ids TEXT NOT NULL DEFAULT '[]',
	motivation TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	requested_by TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (program_id) REFERENCES programs(id) ON DELETE CASCADE,
	FOREIGN KEY (requested_by) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE enrollment_request_contact_users (
	enrollment_request_id TEXT NOT NULL,
	contact_user_id TEXT NOT NULL,
	PRIMARY KEY (enrollment_request_id, contact_user_id),
	FOREIGN KEY (enrollment_request_id) REFERENCES enrollment_requests(id) ON DELETE CASCADE,
	FOREIGN KEY (contact_user_id) REFERENCES contact_users(id) ON DELETE CASCADE
);

CREATE TABLE clients (
	id TEXT PRIMARY KEY,
	program_id TEXT NOT NULL,
	enrollment_request_id TEXT NOT NULL,
	account_ids TEXT NOT NULL DEFAULT '[]',
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (program_id) REFERENCES programs(id) ON DELETE CASCADE,
	FOREIGN KEY (enrollment_request_id) REFERENCES enrollment_requests(id) ON DELETE CASCADE
);

CREATE TABLE client_contact_users (
	client_id TEXT NOT NULL,
	contact_user_id TEXT NOT NULL,
	PRIMARY KEY (client_id, contact_user_id),
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE,
	FOREIGN KEY (contact_user_id) REFERENCES contact_users(id) ON DELETE CASCADE
);

CREATE INDEX idx_users_email ON users(email);
CREATE INDEX idx_users_role_status ON users(role, status);
CREATE INDEX idx_registration_requests_status ON registration_requests(status);
CREATE INDEX idx_registration_requests_email ON registration_requests(email);
CREATE INDEX idx_programs_status ON programs(status);
CREATE INDEX idx_programs_created_by ON programs(created_by);
CREATE INDEX idx_enrollment_requests_program ON enrollment_requests(program_id);
CREATE INDEX idx_enrollment_requests_status ON enrollment_requests(status);
CREATE INDEX idx_clients_program ON clients(program_id);
`

// The reverse script drops every index, then every table in dependency
// order (children first).
const schemaV1Down = `
DROP INDEX idx_clients_program;
DROP INDEX idx_enrollment_requests_status;
DROP INDEX idx_enrollment_requests_program;
DROP INDEX idx_programs_created_by;
DROP INDEX idx_programs_status;
DROP INDEX idx_registration_requests_email;
DROP INDEX idx_registration_requests_status;
DROP INDEX idx_users_role_status;
DROP INDEX idx_users_email;

DROP TABLE client_contact_users;
DROP TABLE clients;
DROP TABLE enrollment_request_contact_users;
DROP TABLE enrollment_requests;
DROP TABLE contact_users;
DROP TABLE programs;
DROP TABLE registration_requests;
DROP TABLE users;
`

// DefaultRegistry returns the registry holding every schema migration
// this build knows about.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	must(registry.Add(Migration{
		Version: 1,
		Name:    "initial_schema",
		Up:      schemaV1Up,
		Down:    schemaV1Down,
	}))
	return registry
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
