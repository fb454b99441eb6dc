package sheetdb

import "testing"

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Preço", "preco"},
		{"price ", "price"},
		{"Start Time", "starttime"},
		{"dias_trabalho", "diastrabalho"},
		{"Duração (min)", "duracaomin"},
	}

	for _, tt := range tests {
		if got := normalizeField(tt.input); got != tt.expected {
			t.Errorf("normalizeField(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestResolveExactMatch(t *testing.T) {
	row := Row{"Price": "50", "Name": "Haircut"}

	v, ok := Resolve(row, "price")
	if !ok || v != "50" {
		t.Errorf("expected exact match 50, got %q (ok=%v)", v, ok)
	}
}

func TestResolveSynonyms(t *testing.T) {
	tests := []struct {
		name      string
		row       Row
		canonical string
		expected  string
	}{
		{name: "valor resolves to price", row: Row{"Valor": "80"}, canonical: "price", expected: "80"},
		{name: "preco with accent resolves to price", row: Row{"Preço": "80"}, canonical: "price", expected: "80"},
		{name: "cost column resolves to price", row: Row{"Service Cost": "25"}, canonical: "price", expected: "25"},
		{name: "profissional resolves to staffid", row: Row{"Profissional ID": "s1"}, canonical: "staffid", expected: "s1"},
		{name: "duracao resolves to duration", row: Row{"Duração (min)": "45"}, canonical: "duration", expected: "45"},
		{name: "telefone resolves to phone", row: Row{"Telefone": "9999"}, canonical: "phone", expected: "9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Resolve(tt.row, tt.canonical)
			if !ok || v != tt.expected {
				t.Errorf("Resolve(%v, %q) = %q (ok=%v), want %q", tt.row, tt.canonical, v, ok, tt.expected)
			}
		})
	}
}

func TestResolveMiss(t *testing.T) {
	row := Row{"Unrelated": "x"}
	if _, ok := Resolve(row, "price"); ok {
		t.Error("expected miss for unrelated column")
	}
	if got := ResolveOr(row, "price", "0"); got != "0" {
		t.Errorf("expected default 0, got %q", got)
	}
}

func TestResolveDeterministic(t *testing.T) {
	// Two columns both contain the "valor" synonym; sorted column order must
	// make the winner stable across runs.
	row := Row{"Valor Total": "100", "Valor": "50"}

	first, _ := Resolve(row, "price")
	for i := 0; i < 100; i++ {
		v, _ := Resolve(row, "price")
		if v != first {
			t.Fatalf("resolution not deterministic: %q then %q", first, v)
		}
	}
	if first != "50" {
		t.Errorf(`expected "Valor" (sorted first) to win, got %q`, first)
	}
}

func TestResolveTrimsValues(t *testing.T) {
	row := Row{"id": "  42  "}
	if v, _ := Resolve(row, "id"); v != "42" {
		t.Errorf("expected trimmed value, got %q", v)
	}
}
