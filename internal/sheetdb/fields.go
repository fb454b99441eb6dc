package sheetdb

import (
	"sort"
	"strings"
)

// Row is a single record-store row: a flat map of column name to the
// display value the store rendered for that cell.
type Row map[string]string

// fieldSynonyms maps a normalized canonical field name to the substrings
// accepted in a normalized column name when no exact match exists. The table
// is fixed; resolution must stay deterministic across pulls.
var fieldSynonyms = map[string][]string{
	"id":        {"id", "codigo"},
	"name":      {"nome", "name"},
	"phone":     {"telefone", "celular", "whatsapp", "phone", "fone"},
	"email":     {"email", "mail"},
	"price":     {"preco", "valor", "price", "cost"},
	"duration":  {"duracao", "duration", "minutos", "minutes", "tempo"},
	"staffid":   {"profissional", "barbeiro", "funcionario", "staff", "employee"},
	"serviceid": {"servico", "service"},
	"clientid":  {"cliente", "client", "customer"},
	"date":      {"data", "date", "dia"},
	"start":     {"inicio", "start", "horario", "hora"},
	"status":    {"status", "situacao", "estado"},
	"workdays":  {"diastrabalho", "workdays", "dias", "days"},
	"starttime": {"entrada", "abertura", "starttime", "inicio"},
	"endtime":   {"saida", "fechamento", "endtime", "fim"},
	"active":    {"ativo", "active", "agenda", "enabled"},
}

// normalizeField lower-cases a field or column name and strips everything
// that is not a letter or digit, so "Preço", "preco " and "PRECO" compare
// equal after accent bytes are dropped.
func normalizeField(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		// Latin-1 accented letters fold to their base letter.
		if folded, ok := accentFold[r]; ok {
			b.WriteRune(folded)
		}
	}
	return b.String()
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ã': 'a', 'â': 'a',
	'é': 'e', 'ê': 'e',
	'í': 'i',
	'ó': 'o', 'õ': 'o', 'ô': 'o',
	'ú': 'u', 'ü': 'u',
	'ç': 'c',
}

// Resolve finds the value for a canonical field in a row. It first looks for
// an exact normalized column match, then for a column whose normalized name
// contains one of the field's known synonyms. Columns are scanned in sorted
// order so the same (field, column set) pair always resolves identically.
func Resolve(row Row, canonical string) (string, bool) {
	want := normalizeField(canonical)

	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		if normalizeField(col) == want {
			return strings.TrimSpace(row[col]), true
		}
	}

	for _, syn := range fieldSynonyms[want] {
		for _, col := range cols {
			if strings.Contains(normalizeField(col), syn) {
				return strings.TrimSpace(row[col]), true
			}
		}
	}

	return "", false
}

// ResolveOr resolves a canonical field, applying def when no column matches.
func ResolveOr(row Row, canonical, def string) string {
	if v, ok := Resolve(row, canonical); ok {
		return v
	}
	return def
}
