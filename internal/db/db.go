package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fanvault/backoffice/internal/config"
	"github.com/fanvault/backoffice/internal/logging"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and ensures the schema is in place.
func Init() {
	var err error
	Conn, err = pgxpool.New(context.Background(), config.C.DSN())
	if err != nil {
		logging.L.Fatal("unable to connect to database", zap.Error(err))
	}

	if err = Conn.Ping(context.Background()); err != nil {
		logging.L.Fatal("unable to ping database", zap.Error(err))
	}

	logging.L.Info("connected to Postgres")

	ensureUsersTable()
	ensureProductsTable()
	ensureOrdersTable()
	ensurePayoutsTable()
	ensureVerificationsTable()
	ensureComplaintsTable()
	ensureTransactionsTable()
	ensurePaymentGatewaysTable()
	ensureThemesTable()
	ensureSystemSettingsTable()
	ensurePasswordResetTokensTable()
	ensureNotificationsTable()
}

// Close releases the pool.
func Close() {
	if Conn != nil {
		Conn.Close()
	}
}

func exec(label, sql string) {
	if _, err := Conn.Exec(context.Background(), sql); err != nil {
		logging.L.Error("schema ensure failed", zap.String("table", label), zap.Error(err))
	}
}

func ensureUsersTable() {
	exec("users", `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'fan' CHECK (role IN ('fan','creator','moderator','admin')),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
    `)
	// Older deployments carried a narrower role constraint without moderators.
	exec("users_role_check", `
        ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check;
        ALTER TABLE users ADD CONSTRAINT users_role_check
            CHECK (role IN ('fan','creator','moderator','admin'));
    `)
}

func ensureProductsTable() {
	exec("products", `
        CREATE TABLE IF NOT EXISTS products (
            id UUID PRIMARY KEY,
            creator_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            description TEXT,
            price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
            status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft','active','archived')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_products_creator ON products(creator_id);
        CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
    `)
}

func ensureOrdersTable() {
	exec("orders", `
        CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            buyer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            creator_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            amount_cents BIGINT NOT NULL CHECK (amount_cents >= 0),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN (
                'pending','paid','shipped','completed','cancelled','refunded'
            )),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id);
        CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
    `)
}

func ensurePayoutsTable() {
	exec("payouts", `
        CREATE TABLE IF NOT EXISTS payouts (
            id UUID PRIMARY KEY,
            creator_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
            method TEXT NOT NULL,
            destination TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected','paid')),
            reviewed_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            review_note TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            reviewed_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_payouts_creator ON payouts(creator_id);
        CREATE INDEX IF NOT EXISTS idx_payouts_status ON payouts(status);
    `)
}

func ensureVerificationsTable() {
	exec("verifications", `
        CREATE TABLE IF NOT EXISTS verifications (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            document_type TEXT NOT NULL,
            document_ref TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected')),
            reviewed_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            review_note TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            reviewed_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_verifications_user ON verifications(user_id);
        CREATE INDEX IF NOT EXISTS idx_verifications_status ON verifications(status);
    `)
}

func ensureComplaintsTable() {
	exec("complaints", `
        CREATE TABLE IF NOT EXISTS complaints (
            id UUID PRIMARY KEY,
            reporter_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            subject_type TEXT NOT NULL CHECK (subject_type IN ('user','product','order')),
            subject_id UUID NOT NULL,
            reason TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','in_review','resolved','dismissed')),
            resolution TEXT NULL,
            resolved_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            resolved_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);
        CREATE INDEX IF NOT EXISTS idx_complaints_reporter ON complaints(reporter_id);
    `)
}

func ensureTransactionsTable() {
	exec("transactions", `
        CREATE TABLE IF NOT EXISTS transactions (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            order_id UUID NULL REFERENCES orders(id) ON DELETE SET NULL,
            type TEXT NOT NULL CHECK (type IN ('purchase','payout','refund','fee')),
            amount_cents BIGINT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed','failed')),
            reference TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type);
    `)
}

func ensurePaymentGatewaysTable() {
	exec("payment_gateways", `
        CREATE TABLE IF NOT EXISTS payment_gateways (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            provider TEXT NOT NULL,
            config JSONB NOT NULL DEFAULT '{}',
            is_enabled BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
}

func ensureThemesTable() {
	exec("themes", `
        CREATE TABLE IF NOT EXISTS themes (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            colors JSONB NOT NULL DEFAULT '{}',
            is_active BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
}

func ensureSystemSettingsTable() {
	exec("system_settings", `
        CREATE TABLE IF NOT EXISTS system_settings (
            key TEXT PRIMARY KEY,
            value JSONB NOT NULL,
            updated_by UUID NULL REFERENCES users(id) ON DELETE SET NULL,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
}

func ensureNotificationsTable() {
	exec("notifications", `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
}

func ensurePasswordResetTokensTable() {
	exec("password_reset_tokens", `
        CREATE TABLE IF NOT EXISTS password_reset_tokens (
            token TEXT PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
            used_at TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_reset_tokens_user ON password_reset_tokens(user_id);
    `)
}
