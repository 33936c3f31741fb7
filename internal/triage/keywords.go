package triage

// DefaultEmergencyNumber is the number quoted in critical actions and the disclaimer.
const DefaultEmergencyNumber = "108"

// SpecialtyRule routes condition labels containing Keyword to Specialty.
type SpecialtyRule struct {
	Keyword   string `yaml:"keyword"`
	Specialty string `yaml:"specialty"`
}

// Tables holds the ordered keyword lists the engine matches against.
// A Tables value is built once at startup and must not be modified after
// it is handed to an Engine.
type Tables struct {
	Critical        []string        `yaml:"critical"`
	Emergent        []string        `yaml:"emergent"`
	Urgent          []string        `yaml:"urgent"`
	Specialties     []SpecialtyRule `yaml:"specialties"`
	EmergencyNumber string          `yaml:"emergency_number"`
}

var defaultCritical = []string{
	"chest pain", "heart attack", "cardiac arrest",
	"difficulty breathing", "can't breathe", "respiratory arrest",
	"stroke", "unable to speak", "paralysis", "face drooping",
	"severe bleeding", "hemorrhage", "uncontrolled bleeding",
	"unconscious", "loss of consciousness", "not responding",
	"severe head injury", "major trauma", "seizure ongoing",
	"choking", "severe burns", "severe allergic reaction",
}

var defaultEmergent = []string{
	"severe pain", "acute pain", "crushing pain", "intense pain",
	"confusion", "altered mental status", "disoriented", "delirious",
	"high fever with stiff neck", "severe infection", "sepsis",
	"open fracture", "penetrating wound", "deep wound",
	"coughing blood", "vomiting blood", "blood in stool",
	"severe headache", "worst headache of life",
	"suicidal thoughts", "want to harm", "overdose",
}

var defaultUrgent = []string{
	"moderate pain", "persistent fever", "dehydration", "dizziness",
	"urinary retention", "severe vomiting", "severe diarrhea",
	"abdominal pain", "back pain", "migraine", "fracture",
	"infection", "rash spreading", "eye injury",
}

// first match wins, so order matters: "skin" must precede "infection".
var defaultSpecialties = []SpecialtyRule{
	{"fever", "General Physician"},
	{"cough", "Pulmonology / General Physician"},
	{"heart", "Cardiology"},
	{"cardiac", "Cardiology"},
	{"chest", "Cardiology / Pulmonology"},
	{"skin", "Dermatology"},
	{"rash", "Dermatology"},
	{"headache", "Neurology"},
	{"migraine", "Neurology"},
	{"stomach", "Gastroenterology"},
	{"abdominal", "Gastroenterology"},
	{"digestive", "Gastroenterology"},
	{"pain", "Pain Management / Orthopedics"},
	{"joint", "Rheumatology / Orthopedics"},
	{"bone", "Orthopedics"},
	{"fracture", "Orthopedics"},
	{"anxiety", "Psychiatry / Mental Health"},
	{"depression", "Psychiatry / Mental Health"},
	{"stress", "Psychiatry / Mental Health"},
	{"infection", "Infectious Disease"},
	{"diabetes", "Endocrinology"},
	{"thyroid", "Endocrinology"},
	{"kidney", "Nephrology"},
	{"liver", "Hepatology / Gastroenterology"},
	{"respiratory", "Pulmonology"},
	{"breathing", "Pulmonology"},
	{"asthma", "Pulmonology"},
	{"eye", "Ophthalmology"},
	{"vision", "Ophthalmology"},
	{"ear", "Otolaryngology (ENT)"},
	{"throat", "Otolaryngology (ENT)"},
	{"nose", "Otolaryngology (ENT)"},
	{"pregnancy", "Obstetrics / Gynecology"},
	{"gynecology", "Obstetrics / Gynecology"},
	{"urinary", "Urology"},
	{"bladder", "Urology"},
	{"blood", "Hematology"},
	{"anemia", "Hematology"},
}

// DefaultTables returns a fresh copy of the built-in keyword tables.
func DefaultTables() *Tables {
	return &Tables{
		Critical:        append([]string(nil), defaultCritical...),
		Emergent:        append([]string(nil), defaultEmergent...),
		Urgent:          append([]string(nil), defaultUrgent...),
		Specialties:     append([]SpecialtyRule(nil), defaultSpecialties...),
		EmergencyNumber: DefaultEmergencyNumber,
	}
}
