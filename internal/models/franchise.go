package models

type FranchiseAdmin struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Franchise struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins"`
	Stores []Store          `json:"stores"`
}

func (f Franchise) HasAdmin(userID string) bool {
	for _, admin := range f.Admins {
		if admin.ID == userID {
			return true
		}
	}
	return false
}

type Store struct {
	ID          string `json:"id"`
	FranchiseID string `json:"franchiseId"`
	Name        string `json:"name"`
}
