package sqlinline

const QSelectSceneForUser = `--sql ae48f99c-4f89-4652-8db8-473c23c7fbcc
select id::text, user_id, title, description, location, time_of_day, mood
from scenes
where id = $1::uuid
  and user_id = $2::text
limit 1;
`

const QListSceneActors = `--sql 29ba2c6a-3798-48c4-9751-393dab800b7f
select a.id::text, a.name, a.age, a.gender, a.description, a.image_url, a.voice_id
from scene_actors sa
join actors a on a.id = sa.actor_id
where sa.scene_id = $1::uuid
order by sa.position asc, a.name asc;
`

const QSelectActorImageURLs = `--sql a1ae3f29-6d02-42a2-8000-4a09676a1c08
select a.image_url
from actors a
where a.user_id = $1::text
  and a.id::text = any($2::text[])
  and a.image_url <> ''
order by array_position($2::text[], a.id::text);
`
