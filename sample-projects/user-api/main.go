package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	moderu "github.com/reoring/moderu"
	"github.com/reoring/moderu/codec"
	d "github.com/reoring/moderu/dsl"
	"github.com/reoring/moderu/middleware"
)

// User represents a user in our system
type User struct {
	ID             int64
	Name           string
	Email          string
	Age            int64
	Active         bool
	CreatedAt      time.Time
	Address        *Address
	PaymentMethods []PaymentMethod
}

// Address is an optional nested record on the user
type Address struct {
	Street string
	City   string
}

// PaymentMethod is the polymorphic payment record; the wire form carries a
// "type" discriminator written by each variant's FinalizeRecord hook.
type PaymentMethod interface {
	Describe() string
}

type CardPayment struct {
	Brand string
	Last4 string
}

func (c CardPayment) Describe() string { return fmt.Sprintf("%s card ending %s", c.Brand, c.Last4) }

func (c CardPayment) FinalizeRecord(r moderu.Record) { r["type"] = "card" }

type BankPayment struct {
	Bank    string
	Account string
}

func (b BankPayment) Describe() string { return fmt.Sprintf("bank transfer via %s", b.Bank) }

func (b BankPayment) FinalizeRecord(r moderu.Record) { r["type"] = "bank" }

// UserStore is a simple in-memory store
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:  make(map[int64]User),
		nextID: 1,
	}
}

func (s *UserStore) Create(user User) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user

	return user
}

func (s *UserStore) GetAll() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users
}

func (s *UserStore) GetByID(id int64) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	return user, exists
}

func (s *UserStore) Update(id int64, user User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return false
	}

	user.ID = id
	s.users[id] = user
	return true
}

func (s *UserStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return false
	}

	delete(s.users, id)
	return true
}

// Server holds our application state
type Server struct {
	store         *UserStore
	userSchema    moderu.Schema[User]
	patchSchema   moderu.Schema[User]
	createHandler http.Handler
}

func addressSchema() moderu.Schema[Address] {
	return d.Model[Address]().
		Field("street", d.AttrOf(func(a *Address) *string { return &a.Street }, codec.String())).
		Field("city", d.AttrOf(func(a *Address) *string { return &a.City }, codec.String())).Optional().
		MustBuild()
}

func paymentChoice() moderu.Choice[PaymentMethod] {
	cardSchema := d.Model[CardPayment]().
		Field("brand", d.AttrOf(func(c *CardPayment) *string { return &c.Brand }, codec.String())).
		Field("last4", d.AttrOf(func(c *CardPayment) *string { return &c.Last4 }, codec.String())).
		MustBuild()
	bankSchema := d.Model[BankPayment]().
		Field("bank", d.AttrOf(func(b *BankPayment) *string { return &b.Bank }, codec.String())).
		Field("account", d.AttrOf(func(b *BankPayment) *string { return &b.Account }, codec.String())).
		MustBuild()
	return d.MustChoice[PaymentMethod]("type",
		d.Variant[PaymentMethod]("card", cardSchema),
		d.Variant[PaymentMethod]("bank", bankSchema),
	)
}

func NewServer() *Server {
	addr := addressSchema()
	payments := paymentChoice()

	// Create schema: name/email are required, everything else is server-set
	// or client-optional.
	userSchema := d.Model[User]().
		Field("id", d.AttrOf(func(u *User) *int64 { return &u.ID }, codec.Int64())).Optional(). // ID will be set by the server
		Field("name", d.AttrOf(func(u *User) *string { return &u.Name }, codec.String())).
		Field("email", d.AttrOf(func(u *User) *string { return &u.Email }, codec.String())).
		Field("age", d.AttrOf(func(u *User) *int64 { return &u.Age }, codec.Int64())).Optional().
		Field("active", d.AttrOf(func(u *User) *bool { return &u.Active }, codec.Bool())).Optional().
		Field("created_at", d.AttrOf(func(u *User) *time.Time { return &u.CreatedAt }, codec.TimeRFC3339())).Optional().
		Field("address", d.RelPtr(func(u *User) **Address { return &u.Address }, addr)).Optional().
		Field("payment_methods", d.Seq(func(u *User) *[]PaymentMethod { return &u.PaymentMethods }, payments)).Optional().
		MustBuild()

	// Patch schema: same plan with every key optional, so a body carrying a
	// single field still decodes. Presence metadata tells us which keys to
	// copy over.
	patchSchema := d.Model[User]().
		Field("id", d.AttrOf(func(u *User) *int64 { return &u.ID }, codec.Int64())).Optional().
		Field("name", d.AttrOf(func(u *User) *string { return &u.Name }, codec.String())).Optional().
		Field("email", d.AttrOf(func(u *User) *string { return &u.Email }, codec.String())).Optional().
		Field("age", d.AttrOf(func(u *User) *int64 { return &u.Age }, codec.Int64())).Optional().
		Field("active", d.AttrOf(func(u *User) *bool { return &u.Active }, codec.Bool())).Optional().
		Field("created_at", d.AttrOf(func(u *User) *time.Time { return &u.CreatedAt }, codec.TimeRFC3339())).Optional().
		Field("address", d.RelPtr(func(u *User) **Address { return &u.Address }, addr)).Optional().
		Field("payment_methods", d.Seq(func(u *User) *[]PaymentMethod { return &u.PaymentMethods }, payments)).Optional().
		MustBuild()

	s := &Server{
		store:       NewUserStore(),
		userSchema:  userSchema,
		patchSchema: patchSchema,
	}
	// The create route goes through the middleware so the handler only sees
	// already-decoded values.
	s.createHandler = middleware.ValidateJSON(userSchema, http.HandlerFunc(s.handleCreateUser), moderu.MaxBytes(1<<20))
	return s
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetUsers(w, r)
	case http.MethodPost:
		s.createHandler.ServeHTTP(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path
	path := strings.TrimPrefix(r.URL.Path, "/users/")
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetUser(w, r, id)
	case http.MethodPatch:
		s.handlePatchUser(w, r, id)
	case http.MethodDelete:
		s.handleDeleteUser(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	users := s.store.GetAll()

	records := make([]moderu.Record, 0, len(users))
	for _, user := range users {
		rec, err := s.userSchema.Encode(r.Context(), user)
		if err != nil {
			http.Error(w, fmt.Sprintf("Encode failed: %v", err), http.StatusInternalServerError)
			return
		}
		records = append(records, rec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"users": records,
		"count": len(records),
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id int64) {
	user, exists := s.store.GetByID(id)
	if !exists {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	data, err := moderu.EncodeTo(r.Context(), s.userSchema, user)
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	// The middleware already decoded and validated the body
	dm, ok := middleware.DecodedFromContext[User](r.Context())
	if !ok {
		http.Error(w, "decoded value missing from context", http.StatusInternalServerError)
		return
	}

	user := dm.Value
	user.CreatedAt = time.Now().UTC()
	createdUser := s.store.Create(user)

	data, err := moderu.EncodeTo(r.Context(), s.userSchema, createdUser)
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request, id int64) {
	// Check if user exists
	existingUser, exists := s.store.GetByID(id)
	if !exists {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Decode with metadata so we know which keys the request actually sent
	decoded, err := moderu.DecodeFromWithMeta(r.Context(), s.patchSchema, moderu.JSONReader(r.Body))
	if err != nil {
		s.handleValidationError(w, err)
		return
	}

	// Apply partial update based on presence information
	updatedUser := existingUser

	// Only update fields that were present in the request
	if decoded.Presence.Seen("/name") {
		updatedUser.Name = decoded.Value.Name
	}
	if decoded.Presence.Seen("/email") {
		updatedUser.Email = decoded.Value.Email
	}
	if decoded.Presence.Seen("/age") {
		updatedUser.Age = decoded.Value.Age
	}
	if decoded.Presence.Seen("/active") {
		updatedUser.Active = decoded.Value.Active
	}
	if decoded.Presence.Seen("/address") {
		// an explicit null clears the address
		updatedUser.Address = decoded.Value.Address
	}
	if decoded.Presence.Seen("/payment_methods") {
		updatedUser.PaymentMethods = decoded.Value.PaymentMethods
	}

	s.store.Update(id, updatedUser)

	rec, err := s.userSchema.Encode(r.Context(), updatedUser)
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":           rec,
		"updated_fields": s.updatedFields(decoded.Presence),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, _ *http.Request, id int64) {
	if !s.store.Delete(id) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Export the wire shape as JSON Schema
	jsonSchema, err := s.userSchema.JSONSchema()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate schema: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jsonSchema)
}

func (s *Server) handleValidationError(w http.ResponseWriter, err error) {
	// Check if it's a moderu mapping error
	if issues, ok := moderu.AsIssues(err); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)

		details := make([]map[string]interface{}, len(issues))
		for i, issue := range issues {
			details[i] = map[string]interface{}{
				"path":    issue.Path,
				"code":    issue.Code,
				"message": issue.Message,
				"hint":    issue.Hint,
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "Validation failed",
			"details": details,
		})
		return
	}

	// Handle other errors
	http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusBadRequest)
}

// updatedFields walks the frozen plan in declaration order and reports which
// wire keys the patch carried.
func (s *Server) updatedFields(presence moderu.PresenceMap) []string {
	var updated []string
	for _, f := range s.patchSchema.Fields() {
		if f.Key == "id" || f.Key == "created_at" {
			continue
		}
		if presence.Seen("/" + f.Key) {
			updated = append(updated, f.Key)
		}
	}
	return updated
}

func main() {
	server := NewServer()

	// Add some initial data
	server.store.Create(User{Name: "Taro", Email: "taro@example.com", Age: 30, Active: true, CreatedAt: time.Now().UTC()})
	server.store.Create(User{Name: "Hanako", Email: "hanako@example.com", Age: 25, Active: true, CreatedAt: time.Now().UTC()})

	// Setup routes
	http.HandleFunc("/users", server.handleUsers)
	http.HandleFunc("/users/", server.handleUserByID)
	http.HandleFunc("/schema", server.handleSchema)

	// Health check
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Root handler with usage instructions
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "moderu User API Sample",
			"endpoints": map[string]string{
				"GET /users":         "Get all users",
				"POST /users":        "Create a new user",
				"GET /users/{id}":    "Get user by ID",
				"PATCH /users/{id}":  "Partially update user",
				"DELETE /users/{id}": "Delete user",
				"GET /schema":        "Get JSON Schema for User",
				"GET /health":        "Health check",
			},
			"examples": map[string]interface{}{
				"create_user": map[string]interface{}{
					"method": "POST",
					"url":    "/users",
					"body": map[string]interface{}{
						"name":   "Taro",
						"email":  "taro@example.com",
						"age":    30,
						"active": true,
						"address": map[string]interface{}{
							"street": "1-2-3 Chiyoda",
							"city":   "Tokyo",
						},
						"payment_methods": []map[string]interface{}{
							{"type": "card", "brand": "visa", "last4": "4242"},
							{"type": "bank", "bank": "mizuho", "account": "1234567"},
						},
					},
				},
				"partial_update": map[string]interface{}{
					"method": "PATCH",
					"url":    "/users/1",
					"body": map[string]interface{}{
						"name": "Jiro",
					},
					"note": "Only updates the 'name' field, other fields remain unchanged",
				},
			},
		})
	})

	log.Println("🚀 moderu User API server starting on :8080")
	log.Println("📖 Visit http://localhost:8080 for usage instructions")
	log.Println("🔍 Visit http://localhost:8080/schema to see the JSON Schema")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
