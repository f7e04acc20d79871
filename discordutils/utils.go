// Package discordutils wraps the handful of discordgo calls the bot makes
// over and over: interaction plumbing, permission checks, role churn.
package discordutils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// AckInteraction sends a deferred response for the given interaction.
func AckInteraction(
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// SendFollowup creates a followup message with the given content.
func SendFollowup(
	content string,
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.FollowupMessageCreate(
		session.State.User.ID,
		interaction,
		true,
		&discordgo.WebhookParams{
			Content: content,
		},
	)
}

// SendFollowupEmbed creates a followup message carrying a single embed.
func SendFollowupEmbed(
	embed *discordgo.MessageEmbed,
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.FollowupMessageCreate(
		session.State.User.ID,
		interaction,
		true,
		&discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	)
}

// MemberHasAdminPermissions returns true if the given member has admin permissions.
func MemberHasAdminPermissions(guild *discordgo.Guild, member *discordgo.Member) bool {
	guildRoles := make(map[string]*discordgo.Role)
	for _, role := range guild.Roles {
		guildRoles[role.ID] = role
	}

	for _, roleID := range member.Roles {
		if role, ok := guildRoles[roleID]; ok {
			if RoleAllowsAdminPermissions(role) {
				return true
			}
		}
	}

	return false
}

// RoleAllowsAdminPermissions returns true if the given role allows admin permissions.
func RoleAllowsAdminPermissions(role *discordgo.Role) bool {
	return role.Permissions&discordgo.PermissionAdministrator > 0
}

// MemberHasRole returns true if the given member has the given role.
func MemberHasRole(member *discordgo.Member, role *discordgo.Role) bool {
	for _, roleID := range member.Roles {
		if roleID == role.ID {
			return true
		}
	}
	return false
}

// AddRole adds the given role to one member, logging the outcome.
func AddRole(
	guild *discordgo.Guild,
	role *discordgo.Role,
	member *discordgo.Member,
	session *discordgo.Session,
) {
	err := session.GuildMemberRoleAdd(guild.ID, member.User.ID, role.ID)
	if err != nil {
		log.Printf(
			"Failed to add %v role to %v in %v: %v",
			role.Name,
			member.User.Username,
			guild.Name,
			err,
		)
	} else {
		log.Printf(
			"Added %v role to %v in %v",
			role.Name,
			member.User.Username,
			guild.Name,
		)
	}
}

// RemoveRole removes the given role from one member, logging the outcome.
func RemoveRole(
	guild *discordgo.Guild,
	role *discordgo.Role,
	member *discordgo.Member,
	session *discordgo.Session,
) {
	err := session.GuildMemberRoleRemove(guild.ID, member.User.ID, role.ID)
	if err != nil {
		log.Printf(
			"Failed to remove %v role from %v in %v: %v",
			role.Name,
			member.User.Username,
			guild.Name,
			err,
		)
	} else {
		log.Printf(
			"Removed %v role from %v in %v",
			role.Name,
			member.User.Username,
			guild.Name,
		)
	}
}
