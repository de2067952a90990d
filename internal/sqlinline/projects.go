package sqlinline

const QListProjects = `--sql b810c5d5-490f-4afd-b0ee-be6bab57249a
select id::text, name, master_prompt, created_at
from projects
order by created_at desc;
`

const QSelectProject = `--sql 448d0995-6664-4e01-bc9c-e652b6bda330
select id::text, name, master_prompt, created_at
from projects
where id = $1::uuid
limit 1;
`

const QUpsertProject = `--sql 04f065bd-9dd6-4963-af4c-597a3e8fcc4e
insert into projects (id, name, master_prompt, created_at)
values ($1::uuid, $2::text, $3::text, now())
on conflict (id) do update set
    name = excluded.name,
    master_prompt = excluded.master_prompt
returning id::text, name, master_prompt, created_at;
`

const QDeleteProject = `--sql c6acc960-1100-4420-9181-0b624c2b57c3
delete from projects
where id = $1::uuid;
`
