package sqlinline

const QSelectUsageCount = `--sql 6e29b039-4afa-473b-b241-5444d15b8179
select count
from usage_counters
where user_id = $1::text
  and service = $2::text
  and period = $3::text;
`

const QIncrementUsage = `--sql c30b65bc-5c28-43bd-80c0-3d3a3a4ad283
insert into usage_counters (user_id, service, period, count, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::bigint, now(), now())
on conflict (user_id, service, period) do update set
    count = usage_counters.count + excluded.count,
    updated_at = now()
returning count;
`

// QIncrementUsageWithin applies the increment only when the new count stays
// within $5. No row is returned when the increment was refused.
const QIncrementUsageWithin = `--sql f4334c3a-ce69-419b-acf1-d0f855f732c3
insert into usage_counters (user_id, service, period, count, created_at, updated_at)
select $1::text, $2::text, $3::text, $4::bigint, now(), now()
where $4::bigint <= $5::bigint
on conflict (user_id, service, period) do update set
    count = usage_counters.count + excluded.count,
    updated_at = now()
where usage_counters.count + excluded.count <= $5::bigint
returning count;
`
