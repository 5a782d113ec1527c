package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/rpc"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"odoo-leads/pkg/config"
	apperrors "odoo-leads/pkg/errors"
	"odoo-leads/pkg/metrics"
)

// Client - XML-RPC клиент Odoo (authenticate + execute_kw).
type Client struct {
	cfg     config.OdooConfig
	common  *xmlrpc.Client
	object  *xmlrpc.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	uid   int64
	uidMu sync.Mutex
}

func New(cfg config.OdooConfig, logger *zap.Logger) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Timeout > 0 {
		transport.ResponseHeaderTimeout = cfg.Timeout
	}

	base := strings.TrimRight(cfg.URL, "/")
	common, err := xmlrpc.NewClient(base+"/xmlrpc/2/common", transport)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента common: %w", err)
	}
	object, err := xmlrpc.NewClient(base+"/xmlrpc/2/object", transport)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента object: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		cfg:     cfg,
		common:  common,
		object:  object,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("odoo"),
	}, nil
}

func (c *Client) Close() {
	_ = c.common.Close()
	_ = c.object.Close()
}

func (c *Client) URL() string { return c.cfg.URL }

// Version вызывает common.version(), аутентификация не нужна.
func (c *Client) Version(ctx context.Context) (map[string]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var reply interface{}
	if err := c.common.Call("version", nil, &reply); err != nil {
		return nil, fmt.Errorf("ошибка вызова version: %w", err)
	}
	info, _ := reply.(map[string]interface{})
	return info, nil
}

// Authenticate получает uid. Odoo отвечает false при неверных учётных данных.
func (c *Client) Authenticate(ctx context.Context) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	c.uidMu.Lock()
	defer c.uidMu.Unlock()

	args := []interface{}{c.cfg.DB, c.cfg.Username, c.cfg.APIKey, map[string]interface{}{}}
	var reply interface{}
	if err := c.common.Call("authenticate", args, &reply); err != nil {
		return 0, fmt.Errorf("ошибка вызова authenticate: %w", err)
	}

	uid := toInt64(reply)
	if uid == 0 {
		return 0, apperrors.ErrAuthFailed
	}
	c.uid = uid
	c.logger.Info("Подключено к Odoo", zap.Int64("uid", uid), zap.String("url", c.cfg.URL))
	return uid, nil
}

func (c *Client) currentUID(ctx context.Context) (int64, error) {
	c.uidMu.Lock()
	uid := c.uid
	c.uidMu.Unlock()
	if uid != 0 {
		return uid, nil
	}
	return c.Authenticate(ctx)
}

// ExecuteKW - object.execute_kw(db, uid, key, model, method, args, kwargs).
func (c *Client) ExecuteKW(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	uid, err := c.currentUID(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}

	start := time.Now()
	var reply interface{}
	err = c.object.Call("execute_kw", []interface{}{c.cfg.DB, uid, c.cfg.APIKey, model, method, args, kwargs}, &reply)
	metrics.OdooCallSeconds.WithLabelValues(model, method).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if IsFault(err) {
			outcome = "fault"
		}
		metrics.OdooCalls.WithLabelValues(model, method, outcome).Inc()
		c.logger.Debug("Ошибка execute_kw", zap.String("model", model), zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("%s.%s: %w", model, method, err)
	}
	metrics.OdooCalls.WithLabelValues(model, method, "ok").Inc()
	return reply, nil
}

func (c *Client) SearchRead(ctx context.Context, model string, domain Domain, fields []string, limit int) ([]Record, error) {
	kwargs := map[string]interface{}{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	reply, err := c.ExecuteKW(ctx, model, "search_read", []interface{}{domain.Encode()}, kwargs)
	if err != nil {
		return nil, err
	}
	return toRecords(reply), nil
}

func (c *Client) Search(ctx context.Context, model string, domain Domain, limit int) ([]int64, error) {
	kwargs := map[string]interface{}{}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	reply, err := c.ExecuteKW(ctx, model, "search", []interface{}{domain.Encode()}, kwargs)
	if err != nil {
		return nil, err
	}
	return toIDs(reply), nil
}

func (c *Client) SearchCount(ctx context.Context, model string, domain Domain) (int64, error) {
	reply, err := c.ExecuteKW(ctx, model, "search_count", []interface{}{domain.Encode()}, nil)
	if err != nil {
		return 0, err
	}
	return toInt64(reply), nil
}

func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error) {
	kwargs := map[string]interface{}{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	reply, err := c.ExecuteKW(ctx, model, "read", []interface{}{ids}, kwargs)
	if err != nil {
		return nil, err
	}
	return toRecords(reply), nil
}

// Create возвращает id новой записи; Odoo может вернуть как число, так и список.
func (c *Client) Create(ctx context.Context, model string, values Values) (int64, error) {
	reply, err := c.ExecuteKW(ctx, model, "create", []interface{}{map[string]interface{}(values)}, nil)
	if err != nil {
		return 0, err
	}
	return firstID(reply), nil
}

func (c *Client) Write(ctx context.Context, model string, ids []int64, values Values) error {
	_, err := c.ExecuteKW(ctx, model, "write", []interface{}{ids, map[string]interface{}(values)}, nil)
	return err
}

func (c *Client) FieldsGet(ctx context.Context, model string) ([]string, error) {
	reply, err := c.ExecuteKW(ctx, model, "fields_get", nil, map[string]interface{}{"attributes": []string{"string"}})
	if err != nil {
		return nil, err
	}
	fields, ok := reply.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *Client) Call(ctx context.Context, model, method string, ids []int64) (interface{}, error) {
	return c.ExecuteKW(ctx, model, method, []interface{}{ids}, nil)
}

// IsFault - ошибка пришла от сервера Odoo (xmlrpc fault), а не от транспорта.
// Клиент net/rpc отдаёт fault как rpc.ServerError с текстом "Fault(code): ...".
func IsFault(err error) bool {
	var serverErr rpc.ServerError
	if !errors.As(err, &serverErr) {
		return false
	}
	return strings.HasPrefix(string(serverErr), "Fault(")
}

// IsNoneFault - метод выполнился, но вернул None, который XML-RPC сервер Odoo не умеет сериализовать.
func IsNoneFault(err error) bool {
	return IsFault(err) && strings.Contains(err.Error(), "cannot marshal None")
}
