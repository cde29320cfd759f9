package models

// UnknownSchool is the sentinel assigned when a project's department is not
// present in the lookup table. Exposed projects never carry an empty school.
const UnknownSchool = "Unknown School"

const (
	SchoolAppliedScience = "SCHOOL OF APPLIED SCIENCE AND TECHNOLOGY"
	SchoolBusiness       = "SCHOOL OF BUSINESS AND MANAGEMENT STUDIES"
	SchoolEngineering    = "SCHOOL OF ENGINEERING TECHNOLOGY"
	SchoolEnvironmental  = "SCHOOL OF ENVIRONMENTAL STUDIES"
	SchoolCommunication  = "SCHOOL OF COMMUNICATION AND INFORMATION TECHNOLOGY"
)

// deptSchools maps a department to its school. Static configuration data,
// loaded once; lookups are exact on the trimmed department string.
var deptSchools = map[string]string{
	"Department of Computer Science":                   SchoolAppliedScience,
	"Department of Science Laboratory Technology":      SchoolAppliedScience,
	"Department of Statistics":                         SchoolAppliedScience,
	"Department of Food Technology":                    SchoolAppliedScience,
	"Department of Hospitality Management":             SchoolAppliedScience,
	"Department of Accountancy":                        SchoolBusiness,
	"Department of Business Administration":            SchoolBusiness,
	"Department of Marketing":                          SchoolBusiness,
	"Department of Banking and Finance":                SchoolBusiness,
	"Department of Public Administration":              SchoolBusiness,
	"Department of Office Technology and Management":   SchoolBusiness,
	"Department of Electrical Electronics Engineering": SchoolEngineering,
	"Department of Mechanical Engineering":             SchoolEngineering,
	"Department of Civil Engineering":                  SchoolEngineering,
	"Department of Computer Engineering":               SchoolEngineering,
	"Department of Architecture":                       SchoolEnvironmental,
	"Department of Estate Management":                  SchoolEnvironmental,
	"Department of Building Technology":                SchoolEnvironmental,
	"Department of Urban and Regional Planning":        SchoolEnvironmental,
	"Department of Mass Communication":                 SchoolCommunication,
	"Department of Library and Information Science":    SchoolCommunication,
}

// SchoolFor resolves a department to its school, falling back to the
// UnknownSchool sentinel. Case-sensitive exact match, no fuzzy matching.
func SchoolFor(department string) string {
	if school, ok := deptSchools[department]; ok {
		return school
	}
	return UnknownSchool
}

// SchoolDirectory returns the built-in school hierarchy in display order.
// Used to drive the filter UI when the source document carries no schools.
func SchoolDirectory() []School {
	return []School{
		{Name: SchoolAppliedScience, Departments: []string{
			"Department of Computer Science",
			"Department of Science Laboratory Technology",
			"Department of Statistics",
			"Department of Food Technology",
			"Department of Hospitality Management",
		}},
		{Name: SchoolBusiness, Departments: []string{
			"Department of Accountancy",
			"Department of Business Administration",
			"Department of Marketing",
			"Department of Banking and Finance",
			"Department of Public Administration",
			"Department of Office Technology and Management",
		}},
		{Name: SchoolEngineering, Departments: []string{
			"Department of Electrical Electronics Engineering",
			"Department of Mechanical Engineering",
			"Department of Civil Engineering",
			"Department of Computer Engineering",
		}},
		{Name: SchoolEnvironmental, Departments: []string{
			"Department of Architecture",
			"Department of Estate Management",
			"Department of Building Technology",
			"Department of Urban and Regional Planning",
		}},
		{Name: SchoolCommunication, Departments: []string{
			"Department of Mass Communication",
			"Department of Library and Information Science",
		}},
	}
}
