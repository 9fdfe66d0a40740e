package store

const (
	accountColumns = `id, user_id, account_type, account_number, balance`

	selectAccountByNumber = `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	selectAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	selectAccountsByUser = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY id`

	lockAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	// The guard keeps the row from going negative even if a caller skipped the
	// balance check; zero rows means the account is missing or underfunded.
	applyAccountDelta = `UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0 RETURNING balance`

	accountExists = `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`

	applicationColumns = `id, user_id, requested_limit, annual_income, employment_status, status, application_date, COALESCE(comments, '')`

	insertApplication = `INSERT INTO credit_applications
		(user_id, requested_limit, annual_income, employment_status, status, application_date, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	searchApplications = `SELECT ` + applicationColumns + ` FROM credit_applications
		WHERE employment_status ILIKE $1 ESCAPE '\' OR comments ILIKE $1 ESCAPE '\'
		ORDER BY application_date DESC, id DESC
		LIMIT $2`

	selectUserByUsername = `SELECT id, username, password_hash, first_name, last_name, email FROM users WHERE username = $1`
)
