// Файл: internal/integrations/mock/odoo.go
package mock

import (
	"context"
	"fmt"
	"net/rpc"
	"reflect"
	"sort"
	"strings"
	"sync"

	"odoo-leads/internal/integrations/odoo"
	apperrors "odoo-leads/pkg/errors"
)

// NoneFault - ответ Odoo на метод, вернувший None.
var NoneFault = rpc.ServerError("Fault(1): TypeError: cannot marshal None unless allow_none is enabled")

// CallLog - запись об одном вызове заглушки.
type CallLog struct {
	Model  string
	Method string
	IDs    []int64
	Values odoo.Values
}

// Odoo - in-memory заглушка сервера Odoo, реализует odoo.Executor и odoo.Session.
type Odoo struct {
	mu      sync.Mutex
	nextID  int64
	records map[string]map[int64]odoo.Record

	// Schemas - поля моделей для fields_get; модели без схемы берутся из DefaultSchemas.
	Schemas map[string][]string
	// Fail - ошибки, которые вернёт вызов "model.method".
	Fail map[string]error
	// Actions - переопределение поведения Call для "model.method".
	Actions map[string]func(ids []int64) (interface{}, error)

	UID         int64
	VersionInfo map[string]interface{}

	Calls          []CallLog
	FieldsGetCalls int
}

// DefaultSchemas - минимальный набор полей моделей, с которыми работают сервисы.
var DefaultSchemas = map[string][]string{
	odoo.ModelPartner: {
		"id", "name", "email", "phone", "is_company", "company_type", "parent_id",
		"category_id", "comment", "customer_rank", "company_name",
	},
	odoo.ModelPartnerCategory: {"id", "name", "parent_id", "color"},
	odoo.ModelLead: {
		"id", "name", "type", "partner_name", "contact_name", "email_from", "phone",
		"expected_revenue", "description", "partner_id", "street", "tag_ids",
	},
	odoo.ModelProductTemplate: {
		"id", "name", "default_code", "type", "list_price", "invoice_policy", "categ_id",
		"description_sale", "sale_ok", "purchase_ok",
	},
	odoo.ModelProduct: {"id", "name", "default_code", "list_price", "product_tmpl_id"},
	odoo.ModelMove: {
		"id", "name", "move_type", "partner_id", "invoice_line_ids", "ref", "state",
		"payment_state", "amount_total", "amount_residual", "invoice_date", "narration", "currency_id",
	},
	odoo.ModelMoveLine:    {"id", "move_id", "account_type", "reconciled", "debit", "credit"},
	odoo.ModelJournal:     {"id", "name", "type"},
	odoo.ModelPayment:     {"id", "payment_type", "partner_type", "partner_id", "amount", "currency_id", "journal_id", "payment_method_line_id", "memo", "ref", "state", "move_id"},
	odoo.ModelPaymentLine: {"id", "journal_id", "payment_type", "name"},
	odoo.ModelPaymentProvider: {
		"id", "name", "code", "state", "stripe_secret_key", "stripe_publishable_key", "company_id",
	},
	odoo.ModelModule:       {"id", "name", "state"},
	odoo.ModelPortalWizard: {"id", "partner_ids", "user_ids"},
}

func NewOdoo() *Odoo {
	return &Odoo{
		records:     make(map[string]map[int64]odoo.Record),
		Schemas:     make(map[string][]string),
		Fail:        make(map[string]error),
		Actions:     make(map[string]func(ids []int64) (interface{}, error)),
		UID:         2,
		VersionInfo: map[string]interface{}{"server_version": "17.0"},
	}
}

func (f *Odoo) fail(model, method string) error {
	if err, ok := f.Fail[model+"."+method]; ok {
		return err
	}
	return nil
}

func (f *Odoo) Version(ctx context.Context) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("common", "version"); err != nil {
		return nil, err
	}
	return f.VersionInfo, nil
}

func (f *Odoo) Authenticate(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("common", "authenticate"); err != nil {
		return 0, err
	}
	if f.UID == 0 {
		return 0, apperrors.ErrAuthFailed
	}
	return f.UID, nil
}

// Seed кладёт запись напрямую, минуя журнал вызовов.
func (f *Odoo) Seed(model string, values odoo.Values) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(model, values)
}

// Get возвращает копию записи или nil.
func (f *Odoo) Get(model string, id int64) odoo.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[model][id]
	if !ok {
		return nil
	}
	return copyRecord(rec)
}

// All возвращает все записи модели по возрастанию id.
func (f *Odoo) All(model string) []odoo.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]odoo.Record, 0, len(f.records[model]))
	for _, id := range f.sortedIDs(model) {
		out = append(out, copyRecord(f.records[model][id]))
	}
	return out
}

func (f *Odoo) Count(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[model])
}

// CallsTo - вызовы заданного метода модели.
func (f *Odoo) CallsTo(model, method string) []CallLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []CallLog
	for _, c := range f.Calls {
		if c.Model == model && c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *Odoo) SearchRead(ctx context.Context, model string, domain odoo.Domain, fields []string, limit int) ([]odoo.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "search_read"})
	if err := f.fail(model, "search_read"); err != nil {
		return nil, err
	}
	var out []odoo.Record
	for _, id := range f.match(model, domain, limit) {
		out = append(out, project(f.records[model][id], fields))
	}
	return out, nil
}

func (f *Odoo) Search(ctx context.Context, model string, domain odoo.Domain, limit int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "search"})
	if err := f.fail(model, "search"); err != nil {
		return nil, err
	}
	return f.match(model, domain, limit), nil
}

func (f *Odoo) SearchCount(ctx context.Context, model string, domain odoo.Domain) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "search_count"})
	if err := f.fail(model, "search_count"); err != nil {
		return 0, err
	}
	return int64(len(f.match(model, domain, 0))), nil
}

func (f *Odoo) Read(ctx context.Context, model string, ids []int64, fields []string) ([]odoo.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "read", IDs: ids})
	if err := f.fail(model, "read"); err != nil {
		return nil, err
	}
	var out []odoo.Record
	for _, id := range ids {
		if rec, ok := f.records[model][id]; ok {
			out = append(out, project(rec, fields))
		}
	}
	return out, nil
}

func (f *Odoo) Create(ctx context.Context, model string, values odoo.Values) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "create", Values: values})
	if err := f.fail(model, "create"); err != nil {
		return 0, err
	}
	if err := f.checkFields(model, values); err != nil {
		return 0, err
	}
	return f.insert(model, values), nil
}

func (f *Odoo) Write(ctx context.Context, model string, ids []int64, values odoo.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "write", IDs: ids, Values: values})
	if err := f.fail(model, "write"); err != nil {
		return err
	}
	if err := f.checkFields(model, values); err != nil {
		return err
	}
	for _, id := range ids {
		rec, ok := f.records[model][id]
		if !ok {
			return rpc.ServerError(fmt.Sprintf("Fault(2): Record does not exist or has been deleted. (%s(%d,))", model, id))
		}
		for k, v := range values {
			rec[k] = applyValue(rec[k], v)
		}
	}
	return nil
}

func (f *Odoo) FieldsGet(ctx context.Context, model string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FieldsGetCalls++
	f.Calls = append(f.Calls, CallLog{Model: model, Method: "fields_get"})
	if err := f.fail(model, "fields_get"); err != nil {
		return nil, err
	}
	fields := f.schema(model)
	out := make([]string, len(fields))
	copy(out, fields)
	sort.Strings(out)
	return out, nil
}

// Call по умолчанию: action_post проводит запись, action_apply и reconcile возвращают None.
func (f *Odoo) Call(ctx context.Context, model, method string, ids []int64) (interface{}, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, CallLog{Model: model, Method: method, IDs: ids})
	if err := f.fail(model, method); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	action, ok := f.Actions[model+"."+method]
	if ok {
		f.mu.Unlock()
		return action(ids)
	}
	defer f.mu.Unlock()

	switch method {
	case "action_post":
		for _, id := range ids {
			rec, ok := f.records[model][id]
			if !ok {
				continue
			}
			rec["state"] = "posted"
			if name, _ := rec["name"].(string); name == "" || name == "/" {
				rec["name"] = fmt.Sprintf("INV/2026/%05d", id)
			}
		}
		return true, nil
	case "action_apply", "reconcile":
		return nil, NoneFault
	}
	return true, nil
}

func (f *Odoo) schema(model string) []string {
	if fields, ok := f.Schemas[model]; ok {
		return fields
	}
	return DefaultSchemas[model]
}

// checkFields повторяет ValueError сервера на неизвестное поле.
func (f *Odoo) checkFields(model string, values odoo.Values) error {
	known := make(map[string]struct{})
	for _, name := range f.schema(model) {
		known[name] = struct{}{}
	}
	for key := range values {
		if _, ok := known[key]; !ok {
			return rpc.ServerError(fmt.Sprintf("Fault(2): ValueError: Invalid field '%s' on model '%s'", key, model))
		}
	}
	return nil
}

func (f *Odoo) insert(model string, values odoo.Values) int64 {
	f.nextID++
	id := f.nextID
	rec := odoo.Record{"id": id}
	for k, v := range values {
		rec[k] = applyValue(nil, v)
	}
	if f.records[model] == nil {
		f.records[model] = make(map[int64]odoo.Record)
	}
	f.records[model][id] = rec
	if model == odoo.ModelProductTemplate {
		f.insertVariant(id, rec)
	}
	return id
}

// insertVariant повторяет Odoo: у шаблона товара сразу появляется product.product.
func (f *Odoo) insertVariant(templateID int64, tmpl odoo.Record) {
	variant := odoo.Values{"product_tmpl_id": templateID}
	for _, key := range []string{"name", "default_code", "list_price"} {
		if v, ok := tmpl[key]; ok {
			variant[key] = v
		}
	}
	f.insert(odoo.ModelProduct, variant)
}

func (f *Odoo) sortedIDs(model string) []int64 {
	ids := make([]int64, 0, len(f.records[model]))
	for id := range f.records[model] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *Odoo) match(model string, domain odoo.Domain, limit int) []int64 {
	var out []int64
	for _, id := range f.sortedIDs(model) {
		if evalDomain(domain, f.records[model][id]) {
			out = append(out, id)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

func project(rec odoo.Record, fields []string) odoo.Record {
	if len(fields) == 0 {
		return copyRecord(rec)
	}
	out := odoo.Record{"id": rec["id"]}
	for _, name := range fields {
		if v, ok := rec[name]; ok {
			out[name] = v
		} else {
			out[name] = false
		}
	}
	return out
}

func copyRecord(rec odoo.Record) odoo.Record {
	out := make(odoo.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// applyValue применяет команды x2many ((4, id), (6, 0, ids), (0, 0, vals)) к текущему значению.
func applyValue(current, v interface{}) interface{} {
	cmds, ok := v.([]interface{})
	if !ok || len(cmds) == 0 {
		return v
	}
	if _, isCmd := cmds[0].([]interface{}); !isCmd {
		return v
	}
	ids, _ := current.([]interface{})
	for _, raw := range cmds {
		cmd, ok := raw.([]interface{})
		if !ok || len(cmd) < 2 {
			continue
		}
		switch toInt(cmd[0]) {
		case 4:
			id := toInt(cmd[1])
			if !containsID(ids, id) {
				ids = append(ids, id)
			}
		case 6:
			ids = nil
			if len(cmd) > 2 {
				list, _ := cmd[2].([]interface{})
				for _, item := range list {
					ids = append(ids, toInt(item))
				}
			}
		case 0:
			if len(cmd) > 2 {
				ids = append(ids, cmd[2])
			}
		}
	}
	return ids
}

func containsID(list []interface{}, id int64) bool {
	for _, item := range list {
		if n, ok := item.(int64); ok && n == id {
			return true
		}
	}
	return false
}

func toInt(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// evalDomain вычисляет домен в польской нотации; термы верхнего уровня соединяются через AND.
func evalDomain(domain odoo.Domain, rec odoo.Record) bool {
	pos := 0
	result := true
	for pos < len(domain) {
		var ok bool
		ok, pos = evalTerm(domain, pos, rec)
		result = result && ok
	}
	return result
}

func evalTerm(domain odoo.Domain, pos int, rec odoo.Record) (bool, int) {
	switch item := domain[pos].(type) {
	case string:
		switch item {
		case odoo.OpOr:
			left, next := evalTerm(domain, pos+1, rec)
			right, end := evalTerm(domain, next, rec)
			return left || right, end
		case odoo.OpAnd:
			left, next := evalTerm(domain, pos+1, rec)
			right, end := evalTerm(domain, next, rec)
			return left && right, end
		case odoo.OpNot:
			v, next := evalTerm(domain, pos+1, rec)
			return !v, next
		}
	case odoo.Cond:
		return evalCond(item, rec), pos + 1
	}
	return false, pos + 1
}

func evalCond(c odoo.Cond, rec odoo.Record) bool {
	actual, exists := rec[c.Field]
	if !exists {
		actual = false
	}
	// many2one хранится как id
	if list, ok := actual.([]interface{}); ok && c.Op != "in" && len(list) > 0 {
		if _, isID := list[0].(int64); isID && isScalar(c.Value) {
			return containsValue(list, c.Value) == (c.Op != "!=")
		}
	}
	switch c.Op {
	case "=":
		return equal(actual, c.Value)
	case "!=":
		return !equal(actual, c.Value)
	case "ilike":
		s, _ := actual.(string)
		p, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(p))
	case "like":
		s, _ := actual.(string)
		p, _ := c.Value.(string)
		return strings.Contains(s, p)
	case "in":
		values := reflect.ValueOf(c.Value)
		if values.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < values.Len(); i++ {
			if equal(actual, values.Index(i).Interface()) {
				return true
			}
		}
	}
	return false
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case int, int64, int32, float64:
		return true
	}
	return false
}

func containsValue(list []interface{}, v interface{}) bool {
	for _, item := range list {
		if equal(item, v) {
			return true
		}
	}
	return false
}

func equal(a, b interface{}) bool {
	if isScalar(a) && isScalar(b) {
		return toInt(a) == toInt(b)
	}
	return reflect.DeepEqual(a, b)
}
