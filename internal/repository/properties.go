package repository

import (
	"github.com/roksva123/go-planning-backend/internal/model"
	"github.com/roksva123/go-planning-backend/internal/notion"
)

// Property names of the task collection.
const (
	propTaskName          = "Nom de tâche"
	propTaskNameFormula   = "Nom de la tache"
	propTaskProjects      = "📁 Projets"
	propTaskClient        = "Client"
	propTaskClientGroup   = "Client (Group)"
	propTaskUsers         = "Utilisateurs"
	propTaskProfiles      = "Profil Notion"
	propTaskTeam          = "Équipe"
	propTaskStatus        = "État"
	propTaskPeriod        = "Période de travail"
	propTaskBilledDays    = "Nombre de jours facturés"
	propTaskSpentDays     = "Nombre de jours passés"
	propTaskAddToCalendar = "Ajouter au Calendrier"
	propTaskAddToRetro    = "Ajouter au rétroplannning client"
	propTaskGoogleEvent   = "Google Event ID"
	propTaskProjectLead   = "Project Lead"
	propTaskProjectStatus = "Statut du projet"
	propTaskComment       = "Commentaire"
)

// Property names of the users collection.
const (
	propUserName    = "Nom"
	propUserPhoto   = "Photo de profil"
	propUserProfile = "Profil Notion"
	propUserTeam    = "Équipe"
	propUserRole    = "Rôle"
	propUserManager = "Manager"
	propUserEmail   = "Email"
	propUserTasks   = "✅ Tâches"
)

// Property names of the clients collection.
const (
	propClientName    = "Nom du client"
	propClientType    = "Type de client"
	propClientContact = "Nom contact principal"
	propClientStatus  = "Client Status"
	propClientNotes   = "Notes"
	propClientEmail   = "Email contact"
)

// Property names of the projects collection.
const (
	propProjectName    = "Nom"
	propProjectClients = "🫡 Clients"
	propProjectType    = "Type"
	propProjectStatus  = "Statut du projet"
	propProjectTeams   = "👯‍♂️ Équipes Impliquées"
	propProjectLead    = "Lead Projet"
	propProjectStart   = "Date de début"
	propProjectEnd     = "Date de fin"
	propProjectDrive   = "Drive"
	propProjectTasks   = "Tâches"
	propProjectUsers   = "Utilisateurs Impliqués"
	propProjectFolder  = "Simone - N° de dossier"
	propProjectEmoji   = "Emoji"
)

const untitledTask = "Tâche sans nom"

func decodeTask(page *notion.Page) model.Task {
	name := notion.Title(page.Prop(propTaskName))
	if name == "" {
		name = notion.Formula(page.Prop(propTaskNameFormula))
	}
	if name == "" {
		name = untitledTask
	}

	return model.Task{
		ID:                 page.ID,
		Name:               name,
		Status:             notion.Status(page.Prop(propTaskStatus)),
		WorkPeriod:         notion.Date(page.Prop(propTaskPeriod)),
		ProjectIDs:         notion.Relation(page.Prop(propTaskProjects)),
		ClientRollup:       notion.Rollup(page.Prop(propTaskClient)),
		ClientGroup:        notion.Formula(page.Prop(propTaskClientGroup)),
		AssignedUserIDs:    notion.Relation(page.Prop(propTaskUsers)),
		AssignedProfiles:   notion.Rollup(page.Prop(propTaskProfiles)),
		Team:               notion.Rollup(page.Prop(propTaskTeam)),
		BilledDays:         notion.Number(page.Prop(propTaskBilledDays)),
		SpentDays:          notion.Number(page.Prop(propTaskSpentDays)),
		AddToCalendar:      notion.Checkbox(page.Prop(propTaskAddToCalendar)),
		AddToRetroPlanning: notion.Checkbox(page.Prop(propTaskAddToRetro)),
		GoogleEventID:      notion.RichTextString(page.Prop(propTaskGoogleEvent)),
		ProjectLead:        notion.Rollup(page.Prop(propTaskProjectLead)),
		ProjectStatus:      notion.Rollup(page.Prop(propTaskProjectStatus)),
		Notes:              notion.RichTextString(page.Prop(propTaskComment)),
		CreatedTime:        page.CreatedTime,
		LastEditedTime:     page.LastEditedTime,
	}
}

func decodeUser(page *notion.Page) model.User {
	return model.User{
		ID:            page.ID,
		Name:          notion.Title(page.Prop(propUserName)),
		ProfilePhoto:  notion.Files(page.Prop(propUserPhoto)),
		NotionProfile: notion.People(page.Prop(propUserProfile)),
		Team:          notion.Relation(page.Prop(propUserTeam)),
		Role:          notion.MultiSelect(page.Prop(propUserRole)),
		Manager:       notion.People(page.Prop(propUserManager)),
		Email:         notion.Email(page.Prop(propUserEmail)),
		Tasks:         notion.Relation(page.Prop(propUserTasks)),
	}
}

func decodeClient(page *notion.Page) model.Client {
	return model.Client{
		ID:          page.ID,
		Name:        notion.Title(page.Prop(propClientName)),
		Type:        notion.MultiSelect(page.Prop(propClientType)),
		ContactName: notion.RichTextString(page.Prop(propClientContact)),
		Status:      notion.Select(page.Prop(propClientStatus)),
		Notes:       notion.RichTextString(page.Prop(propClientNotes)),
		Email:       notion.Email(page.Prop(propClientEmail)),
	}
}

// decodeProject leaves Client empty; the catalog resolves it.
func decodeProject(page *notion.Page) model.Project {
	return model.Project{
		ID:            page.ID,
		Name:          notion.Title(page.Prop(propProjectName)),
		ClientIDs:     notion.Relation(page.Prop(propProjectClients)),
		Type:          notion.MultiSelect(page.Prop(propProjectType)),
		Status:        notion.Select(page.Prop(propProjectStatus)),
		InvolvedTeams: notion.Relation(page.Prop(propProjectTeams)),
		ProjectLead:   notion.People(page.Prop(propProjectLead)),
		StartDate:     notion.Date(page.Prop(propProjectStart)),
		EndDate:       notion.Date(page.Prop(propProjectEnd)),
		DriveURL:      notion.URL(page.Prop(propProjectDrive)),
		Tasks:         notion.Relation(page.Prop(propProjectTasks)),
		InvolvedUsers: notion.Relation(page.Prop(propProjectUsers)),
		FolderNumber:  notion.RichTextString(page.Prop(propProjectFolder)),
		Emoji:         notion.RichTextString(page.Prop(propProjectEmoji)),
	}
}
