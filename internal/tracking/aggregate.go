package tracking

import (
	"errors"
	"log"
	"time"

	"github.com/CampusTrack/CT-Backend/internal/db"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// trailLimit caps how many recent samples feed a user's trail.
const trailLimit = 50

// UserView is one trackable user as plotted on the admin map: current
// position, oldest-first trail, presence flag, and profile metadata.
type UserView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Lat       float64      `json:"lat"`
	Lng       float64      `json:"lng"`
	Timestamp time.Time    `json:"timestamp"`
	ClassName string       `json:"class_name"`
	School    string       `json:"school"`
	Sharing   bool         `json:"is_sharing"`
	Trail     [][2]float64 `json:"trail"`
}

// studentRecord is a thin projection of the auth users table.
type studentRecord struct {
	UserID       string
	DisplayName  string
	Username     string
	School       string
	StudentClass string
}

func (studentRecord) TableName() string { return "app_auth.users" }

// buildView shapes one user's rows into a UserView. samples must be
// newest-first; users with no samples have no plottable position and are
// reported absent via ok=false.
func buildView(user studentRecord, samples []LocationSample, sharing bool) (UserView, bool) {
	if len(samples) == 0 {
		return UserView{}, false
	}

	name := user.DisplayName
	if name == "" && user.Username != "" {
		// Casers carry internal state; build one per call rather than
		// sharing across request goroutines.
		name = cases.Title(language.English).String(user.Username)
	}
	if name == "" {
		name = "Unknown"
	}

	class := user.StudentClass
	if class == "" {
		class = "N/A"
	}
	school := user.School
	if school == "" {
		school = "N/A"
	}

	current := samples[0]

	// Reverse into oldest-first order for trail rendering.
	trail := make([][2]float64, 0, len(samples))
	for i := len(samples) - 1; i >= 0; i-- {
		trail = append(trail, [2]float64{samples[i].Lat, samples[i].Lng})
	}

	return UserView{
		ID:        user.UserID,
		Name:      name,
		Lat:       current.Lat,
		Lng:       current.Lng,
		Timestamp: current.Timestamp,
		ClassName: class,
		School:    school,
		Sharing:   sharing,
		Trail:     trail,
	}, true
}

// AggregateViews joins every student who has at least one sample with
// their latest samples and presence flag. A bad record skips that one
// user, never the batch.
func AggregateViews() ([]UserView, error) {
	var students []studentRecord
	if err := db.DB.Find(&students, "role = ?", "STUDENT").Error; err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(students))
	for _, student := range students {
		var samples []LocationSample
		err := db.DB.
			Where("user_id = ?", student.UserID).
			Order("timestamp desc").
			Limit(trailLimit).
			Find(&samples).Error
		if err != nil {
			log.Printf("[tracking] skipping user %s: sample fetch failed: %v", student.UserID, err)
			continue
		}

		sharing := false
		var flag PresenceFlag
		if err := db.DB.First(&flag, "user_id = ?", student.UserID).Error; err == nil {
			sharing = flag.Sharing
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[tracking] skipping user %s: presence fetch failed: %v", student.UserID, err)
			continue
		}

		if view, ok := buildView(student, samples, sharing); ok {
			views = append(views, view)
		}
	}

	return views, nil
}
