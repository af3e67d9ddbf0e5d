package postgres

const (
	tripColumns = `id, name, currency, is_archived, ledger_version, created_by, created_at, updated_at`

	getTripQuery = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = $1`

	listTripsQuery = `
		SELECT t.id, t.name, t.currency, t.is_archived, t.ledger_version, t.created_by, t.created_at, t.updated_at
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		WHERE m.user_id = $1 AND t.is_archived = $2
		ORDER BY t.created_at DESC, t.id`

	tripIDsQuery = `
		SELECT id FROM trips ORDER BY id`

	isMemberQuery = `
		SELECT EXISTS (
			SELECT 1 FROM trip_members WHERE trip_id = $1 AND user_id = $2
		)`

	lockTripQuery = `
		SELECT id FROM trips WHERE id = $1 FOR UPDATE`

	bumpVersionQuery = `
		UPDATE trips
		SET ledger_version = ledger_version + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ledger_version`

	setArchivedQuery = `
		UPDATE trips SET is_archived = $2 WHERE id = $1`

	listMembersQuery = `
		SELECT trip_id, user_id, display_name, joined_at
		FROM trip_members
		WHERE trip_id = $1
		ORDER BY user_id`

	expenseColumns = `id, trip_id, description, category, amount_minor, currency, paid_by, split_strategy, is_locked, created_by, created_at, updated_at`

	getExpenseQuery = `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE trip_id = $1 AND id = $2`

	listExpensesQuery = `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE trip_id = $1
		ORDER BY created_at, id`

	expenseSplitsQuery = `
		SELECT expense_id, member_id, amount_minor, percentage::text
		FROM expense_splits
		WHERE expense_id = $1
		ORDER BY member_id`

	tripSplitsQuery = `
		SELECT s.expense_id, s.member_id, s.amount_minor, s.percentage::text
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.trip_id = $1
		ORDER BY s.expense_id, s.member_id`

	insertExpenseQuery = `
		INSERT INTO expenses (id, trip_id, description, category, amount_minor, currency, paid_by, split_strategy, is_locked, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateExpenseQuery = `
		UPDATE expenses
		SET description = $3,
			category = $4,
			amount_minor = $5,
			currency = $6,
			paid_by = $7,
			split_strategy = $8,
			is_locked = $9,
			updated_at = $10
		WHERE trip_id = $1 AND id = $2`

	deleteExpenseQuery = `
		DELETE FROM expenses WHERE trip_id = $1 AND id = $2`

	deleteSplitsQuery = `
		DELETE FROM expense_splits WHERE expense_id = $1`

	insertSplitQuery = `
		INSERT INTO expense_splits (expense_id, member_id, amount_minor, percentage)
		VALUES ($1, $2, $3, $4::text::numeric)`

	setLockedQuery = `
		UPDATE expenses SET is_locked = $3 WHERE trip_id = $1 AND id = ANY($2)`

	settlementColumns = `id, trip_id, from_member, to_member, amount_minor, currency, notes, created_by, created_at`

	listSettlementsQuery = `
		SELECT ` + settlementColumns + `
		FROM settlements
		WHERE trip_id = $1
		ORDER BY created_at, id`

	insertSettlementQuery = `
		INSERT INTO settlements (id, trip_id, from_member, to_member, amount_minor, currency, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	deleteSettlementQuery = `
		DELETE FROM settlements WHERE trip_id = $1 AND id = $2`
)
