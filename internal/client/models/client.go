package models

type Client struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes,omitempty"`
}

func (c Client) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}
