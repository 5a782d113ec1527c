package odoo

// Values - значения полей для create/write.
type Values map[string]interface{}

// Record - одна запись из search_read/read. Odoo возвращает false вместо пустых значений.
type Record map[string]interface{}

func (r Record) ID() int64 { return toInt64(r["id"]) }

// String возвращает строковое поле; false и nil дают "".
func (r Record) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}

func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Many2One разбирает значение вида [id, "display name"].
func (r Record) Many2One(field string) (int64, string) {
	switch v := r[field].(type) {
	case []interface{}:
		if len(v) == 0 {
			return 0, ""
		}
		name := ""
		if len(v) > 1 {
			name, _ = v[1].(string)
		}
		return toInt64(v[0]), name
	case int64, int:
		return toInt64(v), ""
	}
	return 0, ""
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// firstID принимает ответ create: число или список из одного id.
func firstID(v interface{}) int64 {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return 0
		}
		return toInt64(list[0])
	}
	return toInt64(v)
}

func toRecords(v interface{}) []Record {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

func toIDs(v interface{}) []int64 {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(list))
	for _, item := range list {
		out = append(out, toInt64(item))
	}
	return out
}
