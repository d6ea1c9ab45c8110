package models

import "time"

// Роли участников команды
const (
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
	RoleRepositor  = "repositor"
)

// Team представляет команду, совместно ведущую учёт
type Team struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	InviteCode string    `json:"inviteCode" db:"invite_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Membership представляет участие пользователя в команде
type Membership struct {
	TeamID string `json:"teamId" db:"team_id"`
	UserID string `json:"userId" db:"user_id"`
	Role   string `json:"role" db:"role"`
}

// UserTeam представляет команду вместе с ролью пользователя в ней
type UserTeam struct {
	Team
	Role string `json:"role" db:"role"`
}

// CreateTeamRequest представляет запрос на создание команды
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// JoinTeamRequest представляет запрос на вступление в команду по коду
type JoinTeamRequest struct {
	Code string `json:"code" binding:"required"`
}
