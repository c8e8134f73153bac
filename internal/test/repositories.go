package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
	"github.com/polkiloo/prisonmarket/internal/domain/model"
	"github.com/polkiloo/prisonmarket/internal/domain/repository"
)

// MemoryStore keeps every repository in memory. Atomic serializes callers and
// restores a snapshot when fn fails, mimicking a database transaction.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	ProductsByID   map[int64]model.Product
	RecipientsByID map[int64]model.Recipient
	ContactsByID   map[int64]model.Contact
	OrdersByID     map[int64]model.Order
	ItemsByOrder   map[int64][]model.OrderItem
	TxByGateway    map[string]model.Transaction

	nextOrder int64
	nextItem  int64
	nextTx    int64

	// Now stamps created orders and transactions.
	Now func() time.Time
	// FailAddItem makes AddItem fail once the given number of items were inserted.
	FailAddItem *int
	// AtomicCalls counts Atomic invocations.
	AtomicCalls int
}

// NewMemoryStore returns an empty store with the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ProductsByID:   make(map[int64]model.Product),
		RecipientsByID: make(map[int64]model.Recipient),
		ContactsByID:   make(map[int64]model.Contact),
		OrdersByID:     make(map[int64]model.Order),
		ItemsByOrder:   make(map[int64][]model.OrderItem),
		TxByGateway:    make(map[string]model.Transaction),
		Now:            time.Now,
	}
}

// AddProduct registers a catalog product.
func (s *MemoryStore) AddProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProductsByID[p.ID] = p
}

// AddRecipient registers a recipient.
func (s *MemoryStore) AddRecipient(r model.Recipient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RecipientsByID[r.ID] = r
}

// AddContact registers a placer.
func (s *MemoryStore) AddContact(c model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ContactsByID[c.ID] = c
}

// PutOrder stores an order as-is, for arranging fixtures.
func (s *MemoryStore) PutOrder(o model.Order, items ...model.OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID > s.nextOrder {
		s.nextOrder = o.ID
	}
	s.OrdersByID[o.ID] = o
	for i := range items {
		items[i].OrderID = o.ID
		s.nextItem++
		items[i].ID = s.nextItem
	}
	s.ItemsByOrder[o.ID] = append(s.ItemsByOrder[o.ID], items...)
}

// PutTransaction stores a transaction fixture and returns it with its local id.
func (s *MemoryStore) PutTransaction(tx model.Transaction) model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTx++
	tx.ID = s.nextTx
	s.TxByGateway[tx.TransactionID] = tx
	return tx
}

// Stock returns the current stock of a product.
func (s *MemoryStore) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ProductsByID[id].Stock
}

// OrderCount returns how many orders are stored.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.OrdersByID)
}

// ItemCount returns how many order items are stored.
func (s *MemoryStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, items := range s.ItemsByOrder {
		n += len(items)
	}
	return n
}

// Transaction returns the stored transaction by gateway id.
func (s *MemoryStore) Transaction(gatewayID string) (model.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.TxByGateway[gatewayID]
	return tx, ok
}

// Order returns the stored order without items.
func (s *MemoryStore) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.OrdersByID[id]
	return o, ok
}

type memorySnapshot struct {
	products  map[int64]model.Product
	orders    map[int64]model.Order
	items     map[int64][]model.OrderItem
	txs       map[string]model.Transaction
	nextOrder int64
	nextItem  int64
	nextTx    int64
}

func (s *MemoryStore) snapshot() memorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memorySnapshot{
		products:  make(map[int64]model.Product, len(s.ProductsByID)),
		orders:    make(map[int64]model.Order, len(s.OrdersByID)),
		items:     make(map[int64][]model.OrderItem, len(s.ItemsByOrder)),
		txs:       make(map[string]model.Transaction, len(s.TxByGateway)),
		nextOrder: s.nextOrder,
		nextItem:  s.nextItem,
		nextTx:    s.nextTx,
	}
	for k, v := range s.ProductsByID {
		snap.products[k] = v
	}
	for k, v := range s.OrdersByID {
		snap.orders[k] = v
	}
	for k, v := range s.ItemsByOrder {
		snap.items[k] = append([]model.OrderItem(nil), v...)
	}
	for k, v := range s.TxByGateway {
		snap.txs[k] = v
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProductsByID = snap.products
	s.OrdersByID = snap.orders
	s.ItemsByOrder = snap.items
	s.TxByGateway = snap.txs
	s.nextOrder = snap.nextOrder
	s.nextItem = snap.nextItem
	s.nextTx = snap.nextTx
}

// Atomic runs fn and rolls every change back when it returns an error.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(repository.Factory) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.AtomicCalls++

	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Products implements repository.Factory.
func (s *MemoryStore) Products() repository.ProductRepository { return memoryProducts{s} }

// Orders implements repository.Factory.
func (s *MemoryStore) Orders() repository.OrderRepository { return memoryOrders{s} }

// Transactions implements repository.Factory.
func (s *MemoryStore) Transactions() repository.TransactionRepository { return memoryTransactions{s} }

// Recipients implements repository.Factory.
func (s *MemoryStore) Recipients() repository.RecipientRepository { return memoryRecipients{s} }

// Contacts implements repository.Factory.
func (s *MemoryStore) Contacts() repository.ContactRepository { return memoryContacts{s} }

type memoryProducts struct{ s *MemoryStore }

func (r memoryProducts) GetByID(_ context.Context, id int64) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.ProductsByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (r memoryProducts) GetForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return r.GetByID(ctx, id)
}

func (r memoryProducts) DecrementStock(_ context.Context, id int64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.ProductsByID[id]
	if !ok || p.Stock < quantity {
		return &domainErrors.InsufficientStockError{ProductID: id, ProductName: p.Name, Available: p.Stock}
	}
	p.Stock -= quantity
	r.s.ProductsByID[id] = p
	return nil
}

type memoryRecipients struct{ s *MemoryStore }

func (r memoryRecipients) Lock(_ context.Context, id int64) (*model.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.RecipientsByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &rec, nil
}

type memoryContacts struct{ s *MemoryStore }

func (r memoryContacts) GetByID(_ context.Context, id int64) (*model.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.ContactsByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &c, nil
}

type memoryOrders struct{ s *MemoryStore }

func (r memoryOrders) named(o model.Order) *model.Order {
	o.RecipientName = r.s.RecipientsByID[o.RecipientID].FullName
	o.PlacerName = r.s.ContactsByID[o.PlacerID].FullName
	return &o
}

func (r memoryOrders) LatestPending(_ context.Context, recipientID, placerID int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *model.Order
	for _, o := range r.s.OrdersByID {
		if o.RecipientID != recipientID || o.PlacerID != placerID || o.Status != model.OrderStatusPending {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) || (o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = r.named(o)
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}

func (r memoryOrders) Create(_ context.Context, recipientID, placerID int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.RecipientsByID[recipientID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	r.s.nextOrder++
	now := r.s.Now()
	o := model.Order{
		ID:            r.s.nextOrder,
		RecipientID:   recipientID,
		PlacerID:      placerID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Total:         decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.s.OrdersByID[o.ID] = o
	return r.named(o), nil
}

func (r memoryOrders) AddItem(_ context.Context, item model.OrderItem) (*model.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.OrdersByID[item.OrderID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	if r.s.FailAddItem != nil {
		if *r.s.FailAddItem == 0 {
			return nil, domainErrors.ErrConflict
		}
		*r.s.FailAddItem--
	}
	r.s.nextItem++
	item.ID = r.s.nextItem
	item.ProductName = r.s.ProductsByID[item.ProductID].Name
	r.s.ItemsByOrder[item.OrderID] = append(r.s.ItemsByOrder[item.OrderID], item)
	return &item, nil
}

func (r memoryOrders) ListItems(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.OrderItem(nil), r.s.ItemsByOrder[orderID]...), nil
}

func (r memoryOrders) UpdateTotal(_ context.Context, orderID int64, total decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OrdersByID[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.Total = total
	r.s.OrdersByID[orderID] = o
	return nil
}

func (r memoryOrders) GetByID(_ context.Context, orderID int64) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OrdersByID[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return r.named(o), nil
}

func (r memoryOrders) ListByPlacer(_ context.Context, placerID int64) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var orders []model.Order
	for _, o := range r.s.OrdersByID {
		if o.PlacerID == placerID {
			orders = append(orders, *r.named(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r memoryOrders) DailyWeight(_ context.Context, recipientID int64, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, o := range r.s.OrdersByID {
		if o.RecipientID != recipientID || o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		for _, item := range r.s.ItemsByOrder[o.ID] {
			weight := r.s.ProductsByID[item.ProductID].Weight
			total = total.Add(weight.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return total, nil
}

func (r memoryOrders) UpdateStatus(_ context.Context, orderID int64, status model.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OrdersByID[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = r.s.Now()
	r.s.OrdersByID[orderID] = o
	return nil
}

func (r memoryOrders) LinkTransaction(_ context.Context, orderID, transactionRowID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OrdersByID[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	id := transactionRowID
	o.TransactionID = &id
	r.s.OrdersByID[orderID] = o
	return nil
}

func (r memoryOrders) SetPaymentStatusByTransaction(_ context.Context, transactionRowID int64, status model.PaymentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, o := range r.s.OrdersByID {
		if o.TransactionID != nil && *o.TransactionID == transactionRowID {
			o.PaymentStatus = status
			r.s.OrdersByID[id] = o
			n++
		}
	}
	return n, nil
}

type memoryTransactions struct{ s *MemoryStore }

func (r memoryTransactions) Upsert(_ context.Context, tx model.Transaction) (*model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.TxByGateway[tx.TransactionID]; ok {
		return &existing, nil
	}
	r.s.nextTx++
	tx.ID = r.s.nextTx
	tx.CreatedAt = r.s.Now()
	r.s.TxByGateway[tx.TransactionID] = tx
	return &tx, nil
}

func (r memoryTransactions) GetForUpdate(_ context.Context, transactionID string) (*model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.TxByGateway[transactionID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &tx, nil
}

func (r memoryTransactions) GetByID(_ context.Context, id int64) (*model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tx := range r.s.TxByGateway {
		if tx.ID == id {
			return &tx, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memoryTransactions) ListByContact(_ context.Context, contactID int64) ([]model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []model.Transaction
	for _, tx := range r.s.TxByGateway {
		if tx.ContactID != nil && *tx.ContactID == contactID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r memoryTransactions) UpdateStatus(_ context.Context, id int64, status model.TransactionStatus, phone *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, tx := range r.s.TxByGateway {
		if tx.ID != id {
			continue
		}
		tx.Status = status
		if phone != nil {
			tx.Phone = *phone
		}
		r.s.TxByGateway[key] = tx
		return nil
	}
	return domainErrors.ErrNotFound
}
