package sqlinline

const QEnsureSchema = `--sql 0a5331a4-ac4c-4948-ae90-8eced117efae
create table if not exists usage_counters (
    user_id    text        not null,
    service    text        not null,
    period     text        not null,
    count      bigint      not null default 0 check (count >= 0),
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now(),
    primary key (user_id, service, period)
);

create table if not exists scenes (
    id          uuid primary key default gen_random_uuid(),
    user_id     text        not null,
    title       text        not null default '',
    description text        not null default '',
    location    text        not null default '',
    time_of_day text        not null default '',
    mood        text        not null default '',
    created_at  timestamptz not null default now(),
    updated_at  timestamptz not null default now()
);
create index if not exists scenes_user_idx on scenes (user_id);

create table if not exists actors (
    id          uuid primary key default gen_random_uuid(),
    user_id     text        not null,
    name        text        not null,
    age         int         not null default 0,
    gender      text        not null default '',
    description text        not null default '',
    image_url   text        not null default '',
    voice_id    text        not null default '',
    created_at  timestamptz not null default now(),
    updated_at  timestamptz not null default now()
);
create index if not exists actors_user_idx on actors (user_id);

create table if not exists scene_actors (
    scene_id uuid not null references scenes (id) on delete cascade,
    actor_id uuid not null references actors (id) on delete cascade,
    position int  not null default 0,
    primary key (scene_id, actor_id)
);

create table if not exists generation_jobs (
    id            uuid primary key,
    user_id       text        not null,
    type          text        not null check (type in ('IMAGE', 'VIDEO', 'AUDIO', 'MUSIC')),
    model         text        not null,
    prompt        text        not null,
    settings      jsonb       not null default '{}'::jsonb,
    status        text        not null check (status in ('PENDING', 'PROCESSING', 'COMPLETED', 'FAILED')),
    output_url    text,
    error_message text,
    scene_id      uuid references scenes (id) on delete set null,
    created_at    timestamptz not null default now(),
    updated_at    timestamptz not null default now(),
    completed_at  timestamptz
);
create index if not exists generation_jobs_user_created_idx on generation_jobs (user_id, created_at desc);
create index if not exists generation_jobs_pending_idx on generation_jobs (created_at) where status = 'PENDING';

create table if not exists integration_tokens (
    id         uuid primary key default gen_random_uuid(),
    provider   text        not null unique,
    token      text        not null,
    properties jsonb       not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
