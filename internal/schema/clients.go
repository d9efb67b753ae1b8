package schema

// Client is one managed broker account.
type Client struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Broker   string `json:"broker"`
	UserID   string `json:"userid,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	Enabled  bool   `json:"enabled"`
	LoggedIn bool   `json:"logged_in"`
}

// ClientList wraps the clients listing response.
type ClientList struct {
	Clients []Client `json:"clients"`
}

// Group is a named set of client accounts orders can be fanned out to.
type Group struct {
	GroupID     string             `json:"group_id"`
	Name        string             `json:"name"`
	Members     []string           `json:"members"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
}

// GroupList wraps the groups listing response.
type GroupList struct {
	Groups []Group `json:"groups"`
}

// CopySetup is one leader/children copy-trading configuration.
type CopySetup struct {
	SetupID     string             `json:"setup_id"`
	Name        string             `json:"name"`
	Leader      string             `json:"leader"`
	Children    []string           `json:"children"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
	Enabled     bool               `json:"enabled"`
}

// CopySetupList wraps the copy-setup listing response.
type CopySetupList struct {
	Setups []CopySetup `json:"setups"`
}

// OpStatus is the generic mutation acknowledgement for client, group, and
// copy-setup management calls.
type OpStatus struct {
	Status  string `json:"status,omitempty"`
	Success bool   `json:"success,omitempty"`
	ID      string `json:"id,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Credentials are the panel login inputs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest creates a panel user.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// LoginResponse carries the session token issued at login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
