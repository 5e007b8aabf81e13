package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/coopnet/intranet-api/internal/authz"
	collabDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/collaborator"
	identityDatamodel "github.com/coopnet/intranet-api/internal/core/datamodel/identity"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with built-in roles, claims, and demo users",
	Long:  `Seed the built-in role/claim tables and a set of demo users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"user_claims", "user_roles", "role_claims", "reactions", "comments", "posts", "collaborator_tags", "collaborators", "guide_tables", "guide_buttons", "available_claims", "roles", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedRoles(db)
		seedAvailableClaims(db)

		gerenteID := seedUser(db, "gerente.ca@coopnet.com.br", "Helena Prado", "Gerente Administrativo", []string{"Gerente CA"})
		seedUser(db, "admin@coopnet.com.br", "Admin Intranet", "Administrador de Sistemas", []string{"Administrador"})
		seedUser(db, "colaborador.ca@coopnet.com.br", "Rafael Lima", "Analista de Processos", []string{"Colaborador CA"})
		seedUser(db, "colaborador.ua@coopnet.com.br", "Juliana Castro", "Agente de Negócios", []string{"Colaborador UA"})

		seedCollaborator(db, "gerente.ca@coopnet.com.br", "Helena Prado", "Gerente Administrativo", "CA-01", nil)
		seedCollaborator(db, "colaborador.ca@coopnet.com.br", "Rafael Lima", "Analista de Processos", "CA-01", &gerenteID)
		seedCollaborator(db, "colaborador.ua@coopnet.com.br", "Juliana Castro", "Agente de Negócios", "UA-07", nil)

		fmt.Println("Seeding complete")
	},
}

// seedRoles upserts the built-in roles and rewrites their claim bundles to
// match the in-code table.
func seedRoles(db *gorm.DB) {
	for _, def := range authz.BuiltinRoles {
		var role identityDatamodel.Role
		err := db.First(&role, "name = ?", def.Name).Error
		if err == gorm.ErrRecordNotFound {
			role = identityDatamodel.Role{Name: def.Name, Tier: string(def.Tier), BuiltIn: true}
			if err := db.Create(&role).Error; err != nil {
				log.Fatalf("failed to create role %s: %v", def.Name, err)
			}
		} else if err != nil {
			log.Fatalf("failed to look up role %s: %v", def.Name, err)
		} else {
			if err := db.Model(&role).Updates(map[string]interface{}{
				"tier":     string(def.Tier),
				"built_in": true,
			}).Error; err != nil {
				log.Fatalf("failed to update role %s: %v", def.Name, err)
			}
		}

		if err := db.Where("role_id = ?", role.ID).Delete(&identityDatamodel.RoleClaim{}).Error; err != nil {
			log.Fatalf("failed to reset bundle for role %s: %v", def.Name, err)
		}
		for _, claim := range def.Claims {
			if err := db.Create(&identityDatamodel.RoleClaim{RoleID: role.ID, ClaimType: claim}).Error; err != nil {
				log.Fatalf("failed to seed bundle claim %s for role %s: %v", claim, def.Name, err)
			}
		}
		fmt.Println("Seeded role:", def.Name)
	}
}

func seedAvailableClaims(db *gorm.DB) {
	for _, claimType := range authz.BuiltinClaimTypes() {
		var existing identityDatamodel.AvailableClaim
		err := db.First(&existing, "claim_type = ?", claimType).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&identityDatamodel.AvailableClaim{ClaimType: claimType}).Error; err != nil {
				log.Fatalf("failed to seed available claim %s: %v", claimType, err)
			}
		} else if err != nil {
			log.Fatalf("failed to look up available claim %s: %v", claimType, err)
		}
	}
	fmt.Println("Seeded available claims registry")
}

// seedUser creates the user if missing, assigns the roles, and materializes
// their claim bundles. Existing users keep their password.
func seedUser(db *gorm.DB, email, name, jobTitle string, roles []string) int64 {
	var user identityDatamodel.User
	err := db.First(&user, "email = ?", email).Error
	if err == gorm.ErrRecordNotFound {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}
		user = identityDatamodel.User{
			Email:        email,
			DisplayName:  name,
			JobTitle:     jobTitle,
			PasswordHash: string(hash),
			IsActive:     true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", email, err)
		}
		fmt.Println("Seeded user:", email)
	} else if err != nil {
		log.Fatalf("failed to look up user %s: %v", email, err)
	} else {
		fmt.Println("User already exists, ensuring roles:", email)
	}

	for _, roleName := range roles {
		var role identityDatamodel.Role
		if err := db.First(&role, "name = ?", roleName).Error; err != nil {
			log.Fatalf("failed to resolve role %s: %v", roleName, err)
		}
		if err := db.Where("user_id = ? AND role_id = ?", user.ID, role.ID).
			FirstOrCreate(&identityDatamodel.UserRole{UserID: user.ID, RoleID: role.ID}).Error; err != nil {
			log.Fatalf("failed to assign role %s to %s: %v", roleName, email, err)
		}

		def, ok := authz.BuiltinRole(roleName)
		if !ok {
			continue
		}
		for _, claim := range def.Claims {
			var existing identityDatamodel.UserClaim
			err := db.First(&existing, "user_id = ? AND claim_type = ?", user.ID, claim).Error
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&identityDatamodel.UserClaim{
					UserID:     user.ID,
					ClaimType:  claim,
					ClaimValue: "true",
				}).Error; err != nil {
					log.Fatalf("failed to seed claim %s for %s: %v", claim, email, err)
				}
			} else if err != nil {
				log.Fatalf("failed to look up claim %s for %s: %v", claim, email, err)
			}
		}
	}

	return user.ID
}

func seedCollaborator(db *gorm.DB, email, name, jobTitle, unitID string, supervisorUserID *int64) {
	var supervisorID *int64
	if supervisorUserID != nil {
		// The collaborator tree references collaborator rows, not user rows.
		var supervisorUser identityDatamodel.User
		if err := db.First(&supervisorUser, "id = ?", *supervisorUserID).Error; err != nil {
			log.Fatalf("failed to resolve supervisor user %d: %v", *supervisorUserID, err)
		}
		var supervisor collabDatamodel.Collaborator
		if err := db.First(&supervisor, "email = ?", supervisorUser.Email).Error; err != nil {
			log.Fatalf("failed to resolve supervisor collaborator %s: %v", supervisorUser.Email, err)
		}
		supervisorID = &supervisor.ID
	}

	var existing collabDatamodel.Collaborator
	err := db.First(&existing, "email = ?", email).Error
	if err == gorm.ErrRecordNotFound {
		if err := db.Create(&collabDatamodel.Collaborator{
			Email:        email,
			Name:         name,
			JobTitle:     jobTitle,
			UnitID:       unitID,
			SupervisorID: supervisorID,
		}).Error; err != nil {
			log.Fatalf("failed to seed collaborator %s: %v", email, err)
		}
		fmt.Println("Seeded collaborator:", email)
	} else if err != nil {
		log.Fatalf("failed to look up collaborator %s: %v", email, err)
	}
}
