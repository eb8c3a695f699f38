package models

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const TokenTypeBearer = "BEARER"

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string `gorm:"not null"                 json:"firstname"`
	LastName     string `gorm:"not null"                 json:"lastname"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type Token struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint   `gorm:"index;not null"           json:"user_id"`
	Token     string `gorm:"unique;not null"          json:"token"`
	TokenType string `gorm:"not null"                 json:"token_type"`
	Expired   bool   `gorm:"default:false"            json:"expired"`
	Revoked   bool   `gorm:"default:false"            json:"revoked"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `gorm:"not null"                 json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Category    string  `gorm:"index"                    json:"category"`
	Image       []byte  `json:"image,omitempty"`
}

type Order struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint    `gorm:"index;not null"           json:"user_id"`
	CreatedAt   int64   `gorm:"not null"                 json:"created_at"`
	Total       float64 `gorm:"not null"                 json:"total"`
	Status      string  `gorm:"not null"                 json:"status"`
	Description string  `json:"description"`
}

type Newsletter struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EmailAddress string `gorm:"unique;not null"          json:"emailAddress"`
}
