package department

// Department is one of the fixed intranet sections. Code doubles as the
// claim prefix, so a holder of CcCreatePost writes to Ciclo de Crédito and
// nowhere else.
type Department struct {
	Code string `json:"code"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Registry holds the eight sections in display order. The set is fixed;
// adding a section means a new claim prefix and new seeded claims, so it is
// a code change, not configuration.
var Registry = []Department{
	{Code: "Cc", Slug: "ciclo", Name: "Ciclo de Crédito"},
	{Code: "Ne", Slug: "negocios", Name: "Negócios"},
	{Code: "Ci", Slug: "controles-internos", Name: "Controles Internos"},
	{Code: "Op", Slug: "operacoes", Name: "Operações"},
	{Code: "Pr", Slug: "processos", Name: "Processos"},
	{Code: "Sc", Slug: "servicos-compartilhados", Name: "Serviços Compartilhados"},
	{Code: "Co", Slug: "cooperativismo", Name: "Cooperativismo"},
	{Code: "Pc", Slug: "pessoas-cultura", Name: "Pessoas e Cultura"},
}

// BySlug resolves a URL slug to its department.
func BySlug(slug string) (Department, bool) {
	for _, d := range Registry {
		if d.Slug == slug {
			return d, true
		}
	}
	return Department{}, false
}

// ByCode resolves a claim prefix to its department.
func ByCode(code string) (Department, bool) {
	for _, d := range Registry {
		if d.Code == code {
			return d, true
		}
	}
	return Department{}, false
}
