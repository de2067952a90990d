package sqlinline

const QPing = `--sql c0703ba8-2677-4bf8-a188-f1fe4462228c
select 1;
`

const QCreateProjects = `--sql c9af92b8-1e4c-417d-8260-8c50226f6aca
create table if not exists projects (
    id uuid primary key,
    name text not null unique,
    master_prompt text not null,
    created_at timestamptz not null default now()
);
`

const QCreateIntegrationTokens = `--sql db4dea48-a20c-4132-953e-0e6df0a86137
create table if not exists integration_tokens (
    id uuid primary key default gen_random_uuid(),
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`

// SchemaStatements run in order at startup.
var SchemaStatements = []string{QCreateProjects, QCreateIntegrationTokens}
