package sqlinline

const QInsertGeneration = `--sql e7441601-bec2-4ed8-a2d5-5458da3245b2
insert into generation_jobs (
  id,
  user_id,
  type,
  model,
  prompt,
  settings,
  status,
  scene_id,
  created_at,
  updated_at
) values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  coalesce($6::jsonb, '{}'::jsonb),
  $7::text,
  $8::uuid,
  $9::timestamptz,
  $9::timestamptz
);
`

const QSelectGenerationByID = `--sql c502dd00-491e-4c98-961a-cd6347bae851
select id::text, user_id, type, model, prompt, settings, status, output_url, error_message, scene_id::text, created_at, updated_at, completed_at
from generation_jobs
where id = $1::uuid
limit 1;
`

const QListGenerationsByUser = `--sql cb79ff52-a2e8-4c99-8728-5719329840b5
select id::text, user_id, type, model, prompt, settings, status, output_url, error_message, scene_id::text, created_at, updated_at, completed_at
from generation_jobs
where user_id = $1::text
  and ($2::text = '' or type = $2::text)
order by created_at desc
limit $3::int;
`

// QUpdateGenerationStatus is a compare-and-set on the previous status.
const QUpdateGenerationStatus = `--sql 316d693d-a915-49e8-8a90-c0bbfd6ada42
update generation_jobs
set status = $3::text,
    output_url = coalesce($4::text, output_url),
    error_message = coalesce($5::text, error_message),
    completed_at = $6::timestamptz,
    updated_at = now()
where id = $1::uuid
  and status = $2::text
returning id::text, user_id, type, model, prompt, settings, status, output_url, error_message, scene_id::text, created_at, updated_at, completed_at;
`
