package bridge

// Collaboration operations predate the JSON protocol and still travel as
// bare `collaboration.method(arg)` text.

const collaborationNamespace = "collaboration"

func (b *Bridge) SendInvitation(player any) error {
	return b.sendLegacyCall(collaborationNamespace, "invite", player)
}

func (b *Bridge) AcceptInvitation(code any) error {
	return b.sendLegacyCall(collaborationNamespace, "accept", code)
}

func (b *Bridge) OpenWorld(name any) error {
	return b.sendLegacyCall(collaborationNamespace, "openWorld", name)
}
