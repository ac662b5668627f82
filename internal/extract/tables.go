package extract

// Tables holds the immutable keyword vocabularies driving extraction.
// Passed into the Extractor at construction so the matching logic stays
// pure and independently testable; callers normally use DefaultTables.
type Tables struct {
	// Skills is matched in order against the description; matched entries
	// are returned in this order, not in description order.
	Skills []string

	// Departments is checked in priority order against title + category.
	Departments []DepartmentRule
}

// DepartmentRule maps a department name to the keywords that select it.
type DepartmentRule struct {
	Name     string
	Keywords []string
}

// DefaultTables returns the built-in vocabularies.
func DefaultTables() Tables {
	return Tables{
		Skills: []string{
			"javascript", "typescript", "python", "java", "c#", "c++",
			"golang", "rust", "ruby", "php", "swift", "kotlin",
			"react", "angular", "vue", "next.js", "node.js",
			"django", "flask", "spring", "rails", "laravel",
			"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch",
			"graphql", "rest api",
			"aws", "azure", "gcp",
			"docker", "kubernetes", "terraform",
			"git", "ci/cd", "linux", "agile",
		},
		Departments: []DepartmentRule{
			{Name: "Engineering", Keywords: []string{"engineer", "developer", "software", "devops", "it "}},
			{Name: "Design", Keywords: []string{"design", "ux", "ui"}},
			{Name: "Product", Keywords: []string{"product"}},
			{Name: "Marketing", Keywords: []string{"marketing", "content", "seo"}},
			{Name: "Sales", Keywords: []string{"sales", "account executive", "business development"}},
			{Name: "Data", Keywords: []string{"data", "analyst", "analytics"}},
		},
	}
}

// departmentOther is the fallback when no rule matches.
const departmentOther = "Other"
