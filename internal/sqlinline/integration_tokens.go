package sqlinline

const QSelectIntegrationToken = `--sql 4f280e25-da12-4043-a47f-33193987d8a3
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql 23acf549-5639-4a27-88cf-f52ba22450d7
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`

const QListIntegrationProviders = `--sql 07ff2934-6606-468d-b157-1ab0b78ff175
select provider, updated_at
from integration_tokens
order by provider asc;
`
