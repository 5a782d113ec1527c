package odoo

// Cond - один лист домена Odoo: (field, operator, value).
type Cond struct {
	Field string
	Op    string
	Value interface{}
}

// Domain - домен поиска в польской нотации: элементы Cond или операторы "|", "&", "!".
type Domain []interface{}

const (
	OpOr  = "|"
	OpAnd = "&"
	OpNot = "!"
)

func Eq(field string, value interface{}) Cond { return Cond{Field: field, Op: "=", Value: value} }

func ILike(field string, value interface{}) Cond {
	return Cond{Field: field, Op: "ilike", Value: value}
}

func Like(field string, value interface{}) Cond { return Cond{Field: field, Op: "like", Value: value} }

func Where(conds ...interface{}) Domain { return Domain(conds) }

// Encode превращает домен в форму, которую ожидает execute_kw.
func (d Domain) Encode() []interface{} {
	out := make([]interface{}, 0, len(d))
	for _, item := range d {
		switch v := item.(type) {
		case Cond:
			out = append(out, []interface{}{v.Field, v.Op, v.Value})
		default:
			out = append(out, v)
		}
	}
	return out
}

// Команды для полей one2many/many2many.

// Link - (4, id): добавить связь с существующей записью.
func Link(id int64) []interface{} { return []interface{}{4, id} }

// LinkAll - набор команд Link для каждого id.
func LinkAll(ids []int64) []interface{} {
	cmds := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, Link(id))
	}
	return cmds
}

// ReplaceAll - (6, 0, ids): заменить все связи.
func ReplaceAll(ids []int64) []interface{} {
	list := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		list = append(list, id)
	}
	return []interface{}{6, 0, list}
}

// CreateLine - (0, 0, values): создать связанную запись.
func CreateLine(values Values) []interface{} {
	return []interface{}{0, 0, map[string]interface{}(values)}
}
