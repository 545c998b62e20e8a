package model

import "time"

// Default seed values for a fresh document.
const (
	DefaultCompanyName = "Example Co"
	CompanyIDPrefix    = "co"
	CriterionIDPrefix  = "cr"
)

// IDFunc generates a unique id with the given prefix.
type IDFunc func(prefix string) string

type seedCriterion struct {
	name   string
	dim    Dimension
	weight float64
}

// defaultCriteria is the ATOM questionnaire the tracker starts with.
var defaultCriteria = []seedCriterion{ //nolint:gochecknoglobals // seed table
	{"Do you manually test your product or service?", DimensionOther, 1},
	{"Do you have manual QA engineers within your organization?", DimensionOther, 1},
	{"Are you doing any automated tests?", DimensionATC, 1},
	{"Are those coded automated tests?", DimensionTQI, 1},
	{"Do you have existing test automation engineers within your organization?", DimensionTSI, 1},
	{"Do you have a QA Architect with significant technical expertise within your organization?", DimensionTSI, 1},
	{"Do you adhere to specific industry standards or certifications in quality assurance, such as ISTQB?", DimensionTSI, 1},
	{"Do you have any documented manual test cases that need to be executed to ensure the quality of your software?", DimensionOther, 1},
	{"Do you use a test case management system to store the manual test cases?", DimensionOther, 1},
	{"Do you collaborate with external experts or consultants to gain insights into industry best practices or upskill your team qualification and level of expertise?", DimensionTSI, 1},
	{"Do you have defined test processes and practices easily accessible by engineers?", DimensionOther, 1},
	{"Do you track test metrics to improve your software development and testing?", DimensionOther, 1},
	{"What is the current system under test coverage with automated tests?", DimensionATC, 1.2},
	{"Are there specific reporting mechanisms or dashboards that provide visibility into the status and quality of your software?", DimensionOther, 1},
	{"Do you have a dedicated test environment?", DimensionOther, 1},
	{"Are there any escalations or critical bugs reported after release on average?", DimensionTQI, 1.1},
	{"Is the unresolved non-low priority bugs count increasing over time?", DimensionTQI, 1.1},
	{"Do you execute your automated test suite daily?", DimensionATC, 1},
	{"Do you execute your high-priority automated tests after each deployment of the app to the test environment?", DimensionATC, 1.1},
	{"Are there any flaky tests part of your test suite?", DimensionTQI, 1.2},
	{"Is more than 5% of your automated test suite failing regularly?", DimensionTQI, 1.2},
	{"Do you have to update element locators too often?", DimensionTQI, 1.1},
	{"Can your automated tests be executed without depending on existing (hard-coded) data on your test environment?", DimensionTQI, 1.1},
	{"Are there any automated tests that depend on other tests?", DimensionTQI, 1.0},
	{"Do you use hard-coded pauses/sleeps in your tests?", DimensionTQI, 1.0},
	{"Do you automate newly developed features before they are released?", DimensionATC, 1.1},
	{"Do you perform planning for automated tests tasks? Do you have a test automation roadmap?", DimensionOther, 1},
	{"Are your automated tests executed in parallel or distributed?", DimensionATC, 1.0},
	{"Is it easy to reuse your tests to be executed against different instances/environments of your system?", DimensionATC, 1.0},
	{"Have you integrated any cutting-edge technologies within your test solution like machine learning auto-analysis of auto-failures or self-healing?", DimensionTQI, 0.9},
	{"Is your test suite integrated with your CI tools?", DimensionOther, 1.1},
	{"Do you currently believe in the value test automation brings to your company?", DimensionTSI, 1.0},
	{"Do you follow any specific development methodologies/frameworks, such as Agile, Scrum, or Lean?", DimensionOther, 0.8},
	{"What are the different levels of testing you perform?", DimensionATC, 1.0},
}

// DefaultCriteria returns the seeded criteria with fresh ids.
func DefaultCriteria(newID IDFunc) []Criterion {
	out := make([]Criterion, len(defaultCriteria))
	for i, s := range defaultCriteria {
		c := NewCriterion(newID(CriterionIDPrefix), s.name, s.dim)
		c.Weight = s.weight
		out[i] = c
	}
	return out
}

// DefaultDocument returns a fresh document with one example company, the
// default criteria and an empty assessment and history for the company.
func DefaultDocument(now time.Time, newID IDFunc) *Document {
	company := Company{ID: newID(CompanyIDPrefix), Name: DefaultCompanyName, CreatedAt: now}
	doc := NewDocument()
	doc.Companies = []Company{company}
	doc.SelectedCompanyID = company.ID
	doc.Criteria = DefaultCriteria(newID)
	doc.Assessments[company.ID] = NewAssessment(now)
	doc.Snapshots[company.ID] = []Snapshot{}
	return doc
}
