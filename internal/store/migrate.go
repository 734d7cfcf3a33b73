package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	studentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "age", Type: field.TypeInt, Default: 0},
		{Name: "comments", Type: field.TypeString, Default: ""},
		{Name: "points", Type: field.TypeJSON},
		{Name: "logs", Type: field.TypeJSON},
		{Name: "tests", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	studentsTable = &schema.Table{
		Name:       "students",
		Columns:    studentsColumns,
		PrimaryKey: []*schema.Column{studentsColumns[0]},
	}

	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{llmRequestsColumns[4]}},
		},
	}

	snapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "student", Type: field.TypeString},
		{Name: "reason", Type: field.TypeString, Default: ""},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	snapshotsTable = &schema.Table{
		Name:       "profile_snapshots",
		Columns:    snapshotsColumns,
		PrimaryKey: []*schema.Column{snapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_student", Columns: []*schema.Column{snapshotsColumns[1]}},
		},
	}

	tables = []*schema.Table{studentsTable, llmRequestsTable, snapshotsTable}
)

// migrate creates or alters the local tables.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(false))
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
