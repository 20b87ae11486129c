package auth

import (
	"encoding/json"
	"net/http"

	"github.com/CampusTrack/CT-Backend/internal/db"
	"github.com/CampusTrack/CT-Backend/internal/middleware"
	"github.com/CampusTrack/CT-Backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserHandler handles POST /auth/admin/users
// Admin-created accounts are the only way to mint TEACHER/ADMIN roles.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username     string `json:"username"`
		DisplayName  string `json:"display_name"`
		Password     string `json:"password"`
		Role         string `json:"role"`
		School       string `json:"school"`
		StudentClass string `json:"student_class"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.Username == "" || body.DisplayName == "" || body.Password == "" || body.Role == "" {
		http.Error(w, "Username, display name, password, and role are required", http.StatusBadRequest)
		return
	}

	if len(body.Password) < 6 {
		http.Error(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	role := middleware.ParseRole(body.Role)
	if string(role) != body.Role {
		http.Error(w, "Role must be STUDENT, TEACHER, or ADMIN", http.StatusBadRequest)
		return
	}

	var existing User
	if err := db.DB.First(&existing, "username = ?", body.Username).Error; err == nil {
		http.Error(w, "Username already taken", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	user := User{
		UserID:         utils.GenerateUUID(),
		Username:       body.Username,
		DisplayName:    body.DisplayName,
		HashedPassword: string(hashed),
		Role:           string(role),
		School:         body.School,
	}
	if role == middleware.RoleStudent {
		user.StudentClass = body.StudentClass
	}

	if err := db.DB.Create(&user).Error; err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"user_id":  user.UserID,
		"username": user.Username,
	})
}

type UserSummary struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	School       string `json:"school"`
	StudentClass string `json:"student_class"`
}

// ListUsersHandler handles GET /auth/admin/users (newest accounts first).
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	var users []User

	if err := db.DB.Order("created_at desc").Find(&users).Error; err != nil {
		http.Error(w, "Failed to fetch users", http.StatusInternalServerError)
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, UserSummary{
			UserID:       u.UserID,
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			Role:         u.Role,
			School:       u.School,
			StudentClass: u.StudentClass,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// UpdateUserHandler handles PATCH /auth/admin/users
func UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID       string  `json:"user_id"`
		DisplayName  *string `json:"display_name"`
		Role         *string `json:"role"`
		School       *string `json:"school"`
		StudentClass *string `json:"student_class"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	var user User
	if err := db.DB.First(&user, "user_id = ?", body.UserID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	updates := map[string]interface{}{}
	if body.DisplayName != nil {
		updates["display_name"] = *body.DisplayName
	}
	if body.Role != nil {
		role := middleware.ParseRole(*body.Role)
		if string(role) != *body.Role {
			http.Error(w, "Role must be STUDENT, TEACHER, or ADMIN", http.StatusBadRequest)
			return
		}
		updates["role"] = string(role)
	}
	if body.School != nil {
		updates["school"] = *body.School
	}
	if body.StudentClass != nil {
		updates["student_class"] = *body.StudentClass
	}

	if len(updates) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"user_id": user.UserID})
}
