package model

import "time"

// Industry is the sector a company declares on creation.
type Industry string

const (
	IndustryTechnology Industry = "Technology"
	IndustryFinance    Industry = "Finance"
	IndustryHealthcare Industry = "Healthcare"
	IndustryEducation  Industry = "Education"
	IndustryOther      Industry = "Other"
)

// Valid reports whether i is a known industry.
func (i Industry) Valid() bool {
	switch i {
	case IndustryTechnology, IndustryFinance, IndustryHealthcare, IndustryEducation, IndustryOther:
		return true
	}
	return false
}

// Company is the single organization that all users and teams belong to.
type Company struct {
	ID              string     `json:"_id" bson:"_id"`
	Name            string     `json:"name" bson:"name"`
	Industry        Industry   `json:"industry" bson:"industry"`
	Description     *string    `json:"description,omitempty" bson:"description"`
	Logo            string     `json:"logo" bson:"logo"`
	EstablishedDate *time.Time `json:"establishedDate,omitempty" bson:"establishedDate"`
	Address         Address    `json:"address" bson:"address"`
	Contact         Contact    `json:"contact" bson:"contact"`
	Users           []string   `json:"users" bson:"users"`
	Teams           []string   `json:"teams" bson:"teams"`
	Projects        []string   `json:"projects" bson:"projects"`
	Tasks           []string   `json:"tasks" bson:"tasks"`
	CreatedBy       *string    `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
	Zip     string `json:"zip" bson:"zip"`
}

type Contact struct {
	Phone   string `json:"phone" bson:"phone"`
	Email   string `json:"email" bson:"email"`
	Website string `json:"website" bson:"website"`
}

// Team groups users of one organization under one or more leaders.
type Team struct {
	ID               string    `json:"_id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Description      *string   `json:"description,omitempty" bson:"description"`
	Organization     string    `json:"organization" bson:"organization"`
	TeamLeaders      []string  `json:"teamLeaders" bson:"teamLeaders"`
	Employees        []string  `json:"employees" bson:"employees"`
	AssignedProjects []string  `json:"assignedProjects" bson:"assignedProjects"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}
