package quote

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Canonical categories of the default vocabulary.
const (
	Fungicida    = "Fungicida"
	Inseticida   = "Inseticida"
	Herbicida    = "Herbicida"
	Acaricida    = "Acaricida"
	Nematicida   = "Nematicida"
	Semente      = "Semente"
	Fertilizante = "Fertilizante"
	Nutricao     = "Nutricao"
	Foliar       = "Foliar"
	Adjuvante    = "Adjuvante"
	Regulador    = "Regulador"
	Outros       = "Outros"
)

// VocabularySpec is the YAML form of a vocabulary.
// Alias and hint order is significant: the first match wins.
type VocabularySpec struct {
	Name            string      `yaml:"name" json:"name"`
	DefaultCategory string      `yaml:"default_category" json:"default_category"`
	Aliases         []AliasSpec `yaml:"aliases" json:"aliases"`
	Hints           []HintSpec  `yaml:"hints" json:"hints"`
}

// AliasSpec maps a spelling found in category cells to a canonical category.
type AliasSpec struct {
	Alias    string `yaml:"alias" json:"alias"`
	Category string `yaml:"category" json:"category"`
}

// HintSpec maps a regex over the normalized product name to a category.
type HintSpec struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Category string `yaml:"category" json:"category"`
}

// alias is an AliasSpec with its key already normalized.
type alias struct {
	key      string
	category string
}

// hint is a compiled HintSpec.
type hint struct {
	re       *regexp.Regexp
	category string
}

// Vocabulary is a compiled, immutable set of category aliases and product
// hints. It is safe for concurrent use.
type Vocabulary struct {
	spec            VocabularySpec
	defaultCategory string
	aliases         []alias
	exact           map[string]string
	hints           []hint
}

// CompileVocabulary validates a spec and builds the lookup tables.
func CompileVocabulary(spec VocabularySpec) (*Vocabulary, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("vocabulary: missing name")
	}
	if len(spec.Aliases) == 0 && len(spec.Hints) == 0 {
		return nil, fmt.Errorf("vocabulary %s: no aliases or hints defined", spec.Name)
	}
	if spec.DefaultCategory == "" {
		spec.DefaultCategory = Outros
	}

	v := &Vocabulary{
		spec:            spec,
		defaultCategory: spec.DefaultCategory,
		aliases:         make([]alias, 0, len(spec.Aliases)),
		exact:           make(map[string]string, len(spec.Aliases)),
		hints:           make([]hint, 0, len(spec.Hints)),
	}
	for i, a := range spec.Aliases {
		key := normalizeKey(a.Alias)
		if key == "" || a.Category == "" {
			return nil, fmt.Errorf("vocabulary %s: alias %d: alias and category are required", spec.Name, i)
		}
		v.aliases = append(v.aliases, alias{key: key, category: a.Category})
		// Keep the first spelling when two aliases normalize to the same key.
		if _, exists := v.exact[key]; !exists {
			v.exact[key] = a.Category
		}
	}
	for i, h := range spec.Hints {
		if h.Category == "" {
			return nil, fmt.Errorf("vocabulary %s: hint %d: missing category", spec.Name, i)
		}
		re, err := regexp.Compile(h.Pattern)
		if err != nil {
			return nil, fmt.Errorf("vocabulary %s: hint %d: %w", spec.Name, i, err)
		}
		v.hints = append(v.hints, hint{re: re, category: h.Category})
	}
	return v, nil
}

// LoadVocabulary reads and compiles a YAML vocabulary file.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	var spec VocabularySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	v, err := CompileVocabulary(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// WriteVocabulary writes spec as YAML to path.
func WriteVocabulary(path string, spec VocabularySpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal vocabulary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Name returns the vocabulary name.
func (v *Vocabulary) Name() string {
	return v.spec.Name
}

// DefaultCategory is the category returned when nothing else matches.
func (v *Vocabulary) DefaultCategory() string {
	return v.defaultCategory
}

// Spec returns a copy of the spec the vocabulary was compiled from.
func (v *Vocabulary) Spec() VocabularySpec {
	spec := v.spec
	spec.Aliases = append([]AliasSpec(nil), v.spec.Aliases...)
	spec.Hints = append([]HintSpec(nil), v.spec.Hints...)
	return spec
}

// DefaultVocabulary returns the built-in Brazilian Portuguese vocabulary.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}

var defaultVocabulary = mustCompileVocabulary(defaultSpec)

func mustCompileVocabulary(spec VocabularySpec) *Vocabulary {
	v, err := CompileVocabulary(spec)
	if err != nil {
		panic(err)
	}
	return v
}

var defaultSpec = VocabularySpec{
	Name:            "agro-pt-br",
	DefaultCategory: Outros,
	Aliases: []AliasSpec{
		{"fungicida", Fungicida}, {"fungicidas", Fungicida},
		{"inseticida", Inseticida}, {"inseticidas", Inseticida},
		{"insecticida", Inseticida}, {"insecticidas", Inseticida},
		{"herbicida", Herbicida}, {"herbicidas", Herbicida}, {"dessecante", Herbicida},
		{"acaricida", Acaricida}, {"acaricidas", Acaricida},
		{"nematicida", Nematicida}, {"nematicidas", Nematicida},
		{"semente", Semente}, {"sementes", Semente}, {"seed", Semente}, {"seeds", Semente},
		{"tratamento de sementes", Semente}, {"trat. sementes", Semente},
		{"fertilizante", Fertilizante}, {"fertilizantes", Fertilizante},
		{"adubo", Fertilizante}, {"adubos", Fertilizante},
		{"corretivo", Fertilizante}, {"corretivos", Fertilizante},
		{"calcario", Fertilizante}, {"gesso", Fertilizante}, {"micronutriente", Fertilizante},
		{"nutricao", Nutricao}, {"nutricao foliar", Nutricao}, {"foliar", Foliar}, {"foliares", Foliar},
		{"adjuvante", Adjuvante}, {"adjuvantes", Adjuvante},
		{"espalhante", Adjuvante}, {"espalhantes", Adjuvante}, {"oleo mineral", Adjuvante},
		{"regulador", Regulador}, {"reguladores", Regulador},
		{"bioestimulante", Regulador}, {"bioestimulantes", Regulador},
		{"outros", Outros}, {"other", Outros}, {"insumo", Outros},
	},
	Hints: []HintSpec{
		{`\b(soja|milho|trigo|sorgo|girassol|algodao|feijao|semente|hibrido|cultivar|var\.)\b`, Semente},
		{`\b(ureia|npk|kcl|cloreto\s+de\s+potassio|superfosfato|fosfato|sulfato|calcario|gesso|micronutriente|boro|zinco|manganes|potassio|nitrogenio|fosforo|dap|map|ssp|tsp)\b`, Fertilizante},
		{`\b(glifosato|atrazina|2,4-d|paraquate|diuron|metolacor|nicosulfuron|clethodim|haloxifope|tembotriona|clorimuron|dicamba|saflufenacil)\b`, Herbicida},
		{`\b(tiametoxam|imidacloprido|clorpirifos|deltametrina|bifentrina|lambda|cihalotrina|espinosade|acetamiprid|fipronil|clorantraniliprole)\b`, Inseticida},
		{`\b(trifloxistrobina|azoxistrobina|tebuconazol|propiconazol|carbendazim|mancozebe|tiofanato|difenoconazol|ciproconazol|picoxistrobina|fluxapiroxade|bixafen)\b`, Fungicida},
		{`\b(abamectina|spiromesifen|clofentezina|bifenazate|dicofol)\b`, Acaricida},
		{`\b(espalhante|adjuvante|nimbus|assist|aureo|agral|silwet)\b`, Adjuvante},
		{`\b(stimulate|bioestimul|regulador|ethephon|trinexapac|prohexadion)\b`, Regulador},
	},
}
