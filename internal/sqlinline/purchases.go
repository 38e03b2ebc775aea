package sqlinline

const QInsertPurchase = `--sql 4de8c4aa-6353-47cf-97b2-f3d80e97d8c5
insert into connection_purchases(id, user_id, package_type, connections_purchased, amount, currency, stripe_session_id, status, properties, created_at, updated_at)
values ($1::uuid, $2::uuid, $3::text, $4::int, $5::numeric, $6::text, $7::text, 'pending',
        jsonb_strip_nulls(jsonb_build_object('country', nullif($8::text, ''))), now(), now())
returning created_at, updated_at;
`

const QSelectPurchaseBySession = `--sql f83b7589-c97a-402c-8071-be30b7ea5945
select id::text, user_id::text, package_type, connections_purchased, amount::text, currency, stripe_session_id, status,
       coalesce(properties->>'country', ''), created_at, updated_at, paid_at, credited_at
from connection_purchases
where stripe_session_id = $1::text
limit 1;
`

// QMarkPurchasePaid only matches pending rows, so concurrent callers race on
// the row lock and exactly one of them sees the transition.
const QMarkPurchasePaid = `--sql 46b2298d-6fbf-4bc1-8024-f15d81e95b55
update connection_purchases
set status = 'paid',
    paid_at = now(),
    updated_at = now(),
    provider_payload = coalesce($2::jsonb, provider_payload)
where stripe_session_id = $1::text
  and status = 'pending'
returning id::text, user_id::text, package_type, connections_purchased, amount::text, currency, stripe_session_id, status,
          coalesce(properties->>'country', ''), created_at, updated_at, paid_at, credited_at;
`

const QListUncreditedPurchases = `--sql 79f373e8-1baf-48bb-92b1-b73a918ededf
select id::text, user_id::text, package_type, connections_purchased, amount::text, currency, stripe_session_id, status,
       coalesce(properties->>'country', ''), created_at, updated_at, paid_at, credited_at
from connection_purchases
where status = 'paid'
  and credited_at is null
order by paid_at asc
limit $1::int;
`
