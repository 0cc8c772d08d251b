package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"fraudlens/internal/types"

	"go.uber.org/zap"
)

// csvHeader is the column order for transaction CSV files.
var csvHeader = []string{
	"transaction_id", "customer_id", "merchant_id", "amount", "timestamp",
	"merchant_category", "merchant_category_code", "location", "country",
	"currency", "payment_method", "payment_sub_type", "pin_verified",
	"device_id", "ip_address", "latitude", "longitude",
}

// InsertTransactions stores the batch in a single write transaction.
// Existing rows with the same transaction_id are replaced.
func (s *Store) InsertTransactions(ctx context.Context, txs []types.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `INSERT OR REPLACE INTO transactions (
		transaction_id, customer_id, merchant_id, amount, ts,
		merchant_category, merchant_category_code, location, country,
		currency, payment_method, payment_sub_type, pin_verified,
		device_id, ip_address, latitude, longitude
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if t.TransactionID == "" {
			return fmt.Errorf("store: transaction missing transaction_id")
		}
		var lat, lon any
		if t.Latitude != nil {
			lat = *t.Latitude
		}
		if t.Longitude != nil {
			lon = *t.Longitude
		}
		if _, err := stmt.ExecContext(ctx,
			t.TransactionID, t.CustomerID, t.MerchantID, t.Amount,
			t.Timestamp.UTC().Format(time.RFC3339Nano),
			t.MerchantCategory, t.MerchantCategoryCode, t.Location,
			t.Country, t.Currency, t.PaymentMethod, t.PaymentSubType,
			boolToInt(t.PINVerified), t.DeviceID, t.IPAddress, lat, lon,
		); err != nil {
			return fmt.Errorf("store: insert %s: %w", t.TransactionID, err)
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	s.logger.Debug("transactions inserted", zap.Int("count", len(txs)))
	return nil
}

// HistoryForCustomer returns the customer's transactions inside the lookback
// window ending at before, oldest first. The transaction identified by
// excludeTxID is omitted so the flagged transaction never pollutes its own
// baseline.
func (s *Store) HistoryForCustomer(ctx context.Context, customerID string, before time.Time, lookback time.Duration, excludeTxID string) ([]types.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := before.Add(-lookback)
	rows, err := s.db.QueryContext(ctx, `SELECT
		transaction_id, customer_id, merchant_id, amount, ts,
		merchant_category, merchant_category_code, location, country,
		currency, payment_method, payment_sub_type, pin_verified,
		device_id, ip_address, latitude, longitude
	FROM transactions
	WHERE customer_id = ? AND ts >= ? AND ts < ? AND transaction_id != ?
	ORDER BY ts ASC`,
		customerID,
		since.UTC().Format(time.RFC3339Nano),
		before.UTC().Format(time.RFC3339Nano),
		excludeTxID)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	var out []types.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountTransactions returns the total number of stored transactions.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(rows *sql.Rows) (types.Transaction, error) {
	var t types.Transaction
	var ts string
	var pin int
	var deviceID, ipAddress sql.NullString
	var lat, lon sql.NullFloat64
	if err := rows.Scan(
		&t.TransactionID, &t.CustomerID, &t.MerchantID, &t.Amount, &ts,
		&t.MerchantCategory, &t.MerchantCategoryCode, &t.Location,
		&t.Country, &t.Currency, &t.PaymentMethod, &t.PaymentSubType,
		&pin, &deviceID, &ipAddress, &lat, &lon,
	); err != nil {
		return t, fmt.Errorf("store: scan transaction: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return t, fmt.Errorf("store: parse timestamp %q: %w", ts, err)
	}
	t.Timestamp = parsed
	t.PINVerified = pin != 0
	t.DeviceID = deviceID.String
	t.IPAddress = ipAddress.String
	if lat.Valid {
		v := lat.Float64
		t.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		t.Longitude = &v
	}
	return t, nil
}

// ImportTransactionsCSV loads a transaction CSV file into the store and
// returns the number of rows imported.
func (s *Store) ImportTransactionsCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("store: open csv: %w", err)
	}
	defer f.Close()

	txs, err := ReadTransactionsCSV(f)
	if err != nil {
		return 0, err
	}
	if err := s.InsertTransactions(ctx, txs); err != nil {
		return 0, err
	}
	return len(txs), nil
}

// ReadTransactionsCSV parses transaction rows from r. The first row must be
// the header.
func ReadTransactionsCSV(r io.Reader) ([]types.Transaction, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("store: read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"transaction_id", "customer_id", "amount", "timestamp"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("store: csv missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var out []types.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("store: csv line %d: %w", line, err)
		}

		amount, err := strconv.ParseFloat(field(record, "amount"), 64)
		if err != nil {
			return nil, fmt.Errorf("store: csv line %d: bad amount: %w", line, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, field(record, "timestamp"))
		if err != nil {
			return nil, fmt.Errorf("store: csv line %d: bad timestamp: %w", line, err)
		}

		t := types.Transaction{
			TransactionID:        field(record, "transaction_id"),
			CustomerID:           field(record, "customer_id"),
			MerchantID:           field(record, "merchant_id"),
			Amount:               amount,
			Timestamp:            ts,
			MerchantCategory:     field(record, "merchant_category"),
			MerchantCategoryCode: field(record, "merchant_category_code"),
			Location:             field(record, "location"),
			Country:              field(record, "country"),
			Currency:             field(record, "currency"),
			PaymentMethod:        field(record, "payment_method"),
			PaymentSubType:       field(record, "payment_sub_type"),
			PINVerified:          field(record, "pin_verified") == "true",
			DeviceID:             field(record, "device_id"),
			IPAddress:            field(record, "ip_address"),
		}
		if v := field(record, "latitude"); v != "" {
			lat, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("store: csv line %d: bad latitude: %w", line, err)
			}
			t.Latitude = &lat
		}
		if v := field(record, "longitude"); v != "" {
			lon, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("store: csv line %d: bad longitude: %w", line, err)
			}
			t.Longitude = &lon
		}
		out = append(out, t)
	}
	return out, nil
}

// WriteTransactionsCSV writes transactions to w with the standard header.
func WriteTransactionsCSV(w io.Writer, txs []types.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("store: write csv header: %w", err)
	}
	for _, t := range txs {
		var lat, lon string
		if t.Latitude != nil {
			lat = strconv.FormatFloat(*t.Latitude, 'f', -1, 64)
		}
		if t.Longitude != nil {
			lon = strconv.FormatFloat(*t.Longitude, 'f', -1, 64)
		}
		record := []string{
			t.TransactionID, t.CustomerID, t.MerchantID,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.Timestamp.UTC().Format(time.RFC3339Nano),
			t.MerchantCategory, t.MerchantCategoryCode, t.Location,
			t.Country, t.Currency, t.PaymentMethod, t.PaymentSubType,
			strconv.FormatBool(t.PINVerified), t.DeviceID, t.IPAddress,
			lat, lon,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("store: write csv row %s: %w", t.TransactionID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
