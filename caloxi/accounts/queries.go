package accounts

const (
	accountColumns = `id, email, username, full_name, avatar_url, password_hash, is_social_login, COALESCE(refresh_token_hash, ''), created_at, updated_at`

	queryFindByEmail = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1
	`

	queryFindByID = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	queryInsert = `
		INSERT INTO accounts (email, username, full_name, avatar_url, password_hash, is_social_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns + `
	`

	// DO NOTHING on email conflict: the losing side of a concurrent
	// create gets no row back and re-fetches the winner instead.
	// A username collision still surfaces as a unique violation.
	queryInsertSocial = `
		INSERT INTO accounts (email, username, full_name, avatar_url, password_hash, is_social_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + accountColumns + `
	`

	queryUpdateRefreshTokenHash = `
		UPDATE accounts
		SET refresh_token_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	queryClearRefreshToken = `
		UPDATE accounts
		SET refresh_token_hash = NULL, updated_at = NOW()
		WHERE id = $1
	`
)
