package sqlinline

const QSelectProfileByUserID = `--sql 2d48cecf-38af-4afc-8f90-f5e7b5ef7ea7
select user_id::text, coalesce(username, ''), current_connections, total_purchased_connections, created_at, updated_at
from profiles
where user_id = $1::uuid
limit 1;
`

// QCreditPurchase calls the stored crediting function; it yields no row when
// the purchase is not paid or was credited before.
const QCreditPurchase = `--sql e7dbdd71-1ed2-41a1-a0ff-9aa54ac38c7c
select user_id::text, connections_added, current_connections, total_purchased_connections
from credit_connection_purchase($1::text);
`
