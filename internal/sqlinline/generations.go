package sqlinline

const QCreateGenerationSchema = `--sql 12256c2d-9406-4751-b0a7-1ac3c4cc6414
create table if not exists generation_requests (
    id                  text primary key,
    original_filename   text not null,
    original_image_path text not null,
    color_count         text not null,
    difficulty          text not null,
    status              text not null,
    client_session_id   text not null,
    created_at          timestamptz not null,
    output_path         text,
    error_message       text,
    completed_at        timestamptz,
    seq                 bigint generated always as identity
);
alter table generation_requests add column if not exists seq bigint generated always as identity;
create index if not exists generation_requests_session_idx on generation_requests (client_session_id, created_at desc, seq desc);
create index if not exists generation_requests_created_idx on generation_requests (created_at desc, seq desc);
`

const QInsertGeneration = `--sql 7a6b4ef2-6921-41bf-a32a-1a8791aaf4f7
insert into generation_requests (
    id, original_filename, original_image_path, color_count, difficulty,
    status, client_session_id, created_at, output_path, error_message, completed_at
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`

const QSelectGenerationByID = `--sql 54786008-83b5-450a-9ead-9b1c712766dd
select id, original_filename, original_image_path, color_count, difficulty,
       status, client_session_id, created_at, output_path, error_message, completed_at
from generation_requests
where id = $1;
`

// seq is insertion order and breaks ties between equal created_at values.
const QListGenerations = `--sql 92dacd2f-29dd-457a-a76b-f3092eee5fb5
select id, original_filename, original_image_path, color_count, difficulty,
       status, client_session_id, created_at, output_path, error_message, completed_at
from generation_requests
order by created_at desc, seq desc;
`

// Immutable columns are never rewritten.
const QUpdateGeneration = `--sql 4f6aac3b-337d-4064-91e9-f9b6645c223c
update generation_requests
set status = $2,
    output_path = $3,
    error_message = $4,
    completed_at = $5
where id = $1;
`

const QCountGenerationsBySession = `--sql 925ab0b4-cc9c-4f25-bd44-174294e8130f
select count(*)
from generation_requests
where client_session_id = $1;
`

const QListGenerationsBySession = `--sql 09063ab5-60fc-4706-aeb8-d215afd10890
select id, original_filename, original_image_path, color_count, difficulty,
       status, client_session_id, created_at, output_path, error_message, completed_at
from generation_requests
where client_session_id = $1
order by created_at desc, seq desc;
`

const QListGenerationsByStatus = `--sql d1e5f444-156d-4588-9d7c-d6fa84ff5cd5
select id, original_filename, original_image_path, color_count, difficulty,
       status, client_session_id, created_at, output_path, error_message, completed_at
from generation_requests
where status = $1
order by created_at desc, seq desc;
`

const QPing = `--sql 7ce617cd-543a-4e54-af90-8da2a03d110d
select 1;
`
