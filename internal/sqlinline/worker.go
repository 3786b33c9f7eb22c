package sqlinline

const QWorkerClaimGeneration = `--sql 7dfeee23-ca45-41d4-83bd-5d27a05912be
with next_job as (
    select id
    from generation_jobs
    where status = 'PENDING'
    order by created_at asc
    for update skip locked
    limit 1
),
updated as (
    update generation_jobs
    set status = 'PROCESSING', updated_at = now()
    where id in (select id from next_job)
    returning id::text, user_id, type, model, prompt, settings, status, output_url, error_message, scene_id::text, created_at, updated_at, completed_at
)
select * from updated;
`
