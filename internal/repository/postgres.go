package repository

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/internal/reconcile"
	"github.com/openkassa/kassaterm/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB

	// txLocks serializes upserts per transaction id so that two
	// overlapping status polls of the same payment cannot race into a
	// lost update.
	txLocks keyedMutex
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&models.Credentials{}, &models.Transaction{}, &models.Product{}, &models.Withdrawal{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

var _ models.Repository = (*PostgresDB)(nil)

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) GetCredentials() (*models.Credentials, error) {
	var creds models.Credentials
	if err := db.Conn.First(&creds).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credentials: %s", err)
	}
	return &creds, nil
}

// SaveCredentials replaces the single persisted credential set.
func (db *PostgresDB) SaveCredentials(creds *models.Credentials) error {
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Credentials{}).Error; err != nil {
			return err
		}
		creds.ID = 0
		return tx.Create(creds).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %s", err)
	}
	return nil
}

func (db *PostgresDB) DeleteCredentials() error {
	if err := db.Conn.Where("1 = 1").Delete(&models.Credentials{}).Error; err != nil {
		return fmt.Errorf("failed to delete credentials: %s", err)
	}
	return nil
}

func (db *PostgresDB) GetTransaction(id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Conn.Where("id = ?", id).First(&transaction).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %s", err)
	}
	return &transaction, nil
}

// UpsertTransaction reconciles the incoming record with whatever is
// already stored under the same id and persists the merge. Writes for
// one id are serialized; different ids proceed in parallel.
func (db *PostgresDB) UpsertTransaction(incoming models.Transaction) (*models.Transaction, error) {
	unlock := db.txLocks.lock(incoming.ID)
	defer unlock()

	existing, err := db.GetTransaction(incoming.ID)
	if err != nil {
		return nil, err
	}

	merged := reconcile.Merge(existing, incoming)
	if existing == nil {
		if err := db.Conn.Create(&merged).Error; err != nil {
			return nil, fmt.Errorf("failed to create transaction: %s", err)
		}
	} else {
		if err := db.Conn.Save(&merged).Error; err != nil {
			return nil, fmt.Errorf("failed to update transaction: %s", err)
		}
	}
	return &merged, nil
}

func (db *PostgresDB) ListTransactions() ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	if err := db.Conn.Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %s", err)
	}
	return transactions, nil
}

func (db *PostgresDB) ListPendingTransactions() ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	if err := db.Conn.Where("status = ?", models.StatusPending).Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %s", err)
	}
	return transactions, nil
}

func (db *PostgresDB) ListProducts() ([]*models.Product, error) {
	var products []*models.Product
	if err := db.Conn.Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %s", err)
	}
	return products, nil
}

func (db *PostgresDB) GetProductByName(name string) (*models.Product, error) {
	var product models.Product
	if err := db.Conn.Where("LOWER(name) = LOWER(?)", name).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by name: %s", err)
	}
	return &product, nil
}

func (db *PostgresDB) CreateProduct(product *models.Product) error {
	if err := db.Conn.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %s", err)
	}
	return nil
}

func (db *PostgresDB) UpdateProduct(product *models.Product) error {
	if err := db.Conn.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %s", err)
	}
	return nil
}

func (db *PostgresDB) DeleteProduct(id string) error {
	if err := db.Conn.Where("id = ?", id).Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to delete product: %s", err)
	}
	return nil
}

// ApplyImport persists a bulk-import plan atomically.
func (db *PostgresDB) ApplyImport(inserts []*models.Product, updates []*models.Product) error {
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		for _, product := range inserts {
			if err := tx.Create(product).Error; err != nil {
				return err
			}
		}
		for _, product := range updates {
			if err := tx.Save(product).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply product import: %s", err)
	}
	return nil
}

func (db *PostgresDB) AddWithdrawal(withdrawal *models.Withdrawal) error {
	if err := db.Conn.Create(withdrawal).Error; err != nil {
		return fmt.Errorf("failed to add withdrawal: %s", err)
	}
	return nil
}

func (db *PostgresDB) ListWithdrawals() ([]*models.Withdrawal, error) {
	var withdrawals []*models.Withdrawal
	if err := db.Conn.Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %s", err)
	}
	return withdrawals, nil
}

// keyedMutex hands out one mutex per key. Keys are never evicted; the
// set of live payment ids on a single terminal is small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
