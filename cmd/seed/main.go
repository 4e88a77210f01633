// Command seed fills the database with fake users, connections and posts for
// local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"campuslink/backend/internal/config"
	"campuslink/backend/internal/database"
	"campuslink/backend/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	universities = []string{"State University", "Tech Institute", "City College", "Riverside University"}
	majors       = []string{"Computer Science", "Biology", "Economics", "Mechanical Engineering", "Psychology"}
	interests    = []string{"music", "hiking", "robotics", "photography", "chess", "basketball", "reading", "gaming"}

	enrollmentStatuses = []string{
		string(models.EnrollmentEnrolled), string(models.EnrollmentGraduated),
		string(models.EnrollmentDroppedOut), string(models.EnrollmentOnLeave),
	}
	classes = []string{
		string(models.ClassFreshman), string(models.ClassSophomore),
		string(models.ClassJunior), string(models.ClassSenior), string(models.ClassGraduate),
	}
	roles = []string{
		string(models.RoleStudent), string(models.RoleAlumni),
		string(models.RoleFaculty), string(models.RoleStaff),
	}
)

func main() {
	userCount := flag.Int("users", 50, "number of users to create")
	seed := flag.Int64("seed", 0, "deterministic seed (0 uses a random one)")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	config.LoadConfig()
	database.Connect(config.AppConfig.DatabaseURL, nil)
	db := database.DB

	users := seedUsers(db, *userCount)
	conns := seedConnections(db, users)
	posts := seedPosts(db, users)
	likes, comments := seedEngagement(db, users, posts)

	fmt.Printf("Seeded %d users, %d connections, %d posts, %d likes, %d comments\n",
		len(users), conns, len(posts), likes, comments)
}

func seedUsers(db *gorm.DB, count int) []models.User {
	// One shared hash keeps seeding fast; every account logs in with "password123".
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.FirstName()
		year := gofakeit.Number(2020, 2030)
		user := models.User{
			Username:         fmt.Sprintf("%s_%s", strings.ToLower(name), gofakeit.Numerify("######")),
			Email:            gofakeit.Email(),
			PasswordHash:     string(hash),
			FullName:         name + " " + gofakeit.LastName(),
			IsActive:         true,
			University:       gofakeit.RandomString(universities),
			Campus:           gofakeit.City(),
			Major:            gofakeit.RandomString(majors),
			EnrollmentStatus: models.EnrollmentStatus(gofakeit.RandomString(enrollmentStatuses)),
			CurrentClass:     models.CurrentClass(gofakeit.RandomString(classes)),
			CurrentRole:      models.CurrentRole(gofakeit.RandomString(roles)),
			GraduationYear:   &year,
			OneLineBio:       gofakeit.Quote(),
			Interests:        datatypes.JSONSlice[string](pickSome(interests, 1, 4)),
			Hobbies:          datatypes.JSONSlice[string](pickSome(interests, 0, 3)),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		users = append(users, user)
	}
	return users
}

func seedConnections(db *gorm.DB, users []models.User) int {
	created := 0
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			if gofakeit.Float32() > 0.15 {
				continue
			}
			status := models.StatusAccepted
			if gofakeit.Float32() < 0.25 {
				status = models.StatusPending
			}
			conn := models.Connection{
				RequesterID: users[i].ID,
				AddresseeID: users[j].ID,
				Status:      status,
			}
			if status == models.StatusAccepted {
				now := time.Now()
				conn.RespondedAt = &now
			}
			if err := db.Create(&conn).Error; err != nil {
				log.Fatalf("Failed to create connection: %v", err)
			}
			created++
		}
	}
	return created
}

func seedPosts(db *gorm.DB, users []models.User) []models.Post {
	privacies := []string{
		string(models.PrivacyPublic), string(models.PrivacyPublic),
		string(models.PrivacyConnections), string(models.PrivacyPrivate),
	}

	var posts []models.Post
	for _, user := range users {
		for n := gofakeit.Number(0, 4); n > 0; n-- {
			post := models.Post{
				UserID:   user.ID,
				Content:  gofakeit.Paragraph(1, 3, 12, " "),
				Privacy:  models.PostPrivacy(gofakeit.RandomString(privacies)),
				IsActive: true,
			}
			if err := db.Create(&post).Error; err != nil {
				log.Fatalf("Failed to create post: %v", err)
			}
			posts = append(posts, post)
		}
	}
	return posts
}

func seedEngagement(db *gorm.DB, users []models.User, posts []models.Post) (int, int) {
	likes, comments := 0, 0
	for _, post := range posts {
		postLikes, postComments := 0, 0
		for _, user := range users {
			if user.ID == post.UserID || gofakeit.Float32() > 0.1 {
				continue
			}
			like := models.PostLike{PostID: post.ID, UserID: user.ID}
			if err := db.Create(&like).Error; err != nil {
				log.Fatalf("Failed to create like: %v", err)
			}
			postLikes++

			if gofakeit.Float32() < 0.4 {
				comment := models.PostComment{
					PostID:   post.ID,
					UserID:   user.ID,
					Content:  gofakeit.Sentence(8),
					IsActive: true,
				}
				if err := db.Create(&comment).Error; err != nil {
					log.Fatalf("Failed to create comment: %v", err)
				}
				postComments++
			}
		}
		err := db.Model(&models.Post{}).Where("id = ?", post.ID).
			Updates(map[string]interface{}{"likes_count": postLikes, "comments_count": postComments}).Error
		if err != nil {
			log.Fatalf("Failed to update post counters: %v", err)
		}
		likes += postLikes
		comments += postComments
	}
	return likes, comments
}

func pickSome(pool []string, min, max int) []string {
	n := gofakeit.Number(min, max)
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	gofakeit.ShuffleStrings(shuffled)
	return shuffled[:n]
}
