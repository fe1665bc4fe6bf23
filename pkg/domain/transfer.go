package domain

// TransferContainer moves the container with serial from source to destination.
// The destination is validated before source is touched, so a rejected
// transfer leaves the container aboard source exactly as it was. The
// container's owner changes once, straight from source to destination.
func TransferContainer(source, destination *Ship, serial string) error {
	if source == nil || destination == nil {
		return newError(ErrorInvalidConfiguration, serial, "transfer of %s requires a source and a destination ship", serial)
	}
	i := source.indexOf(serial)
	if i < 0 {
		return source.notAboard(serial)
	}
	if source == destination || source.id == destination.id {
		return newError(ErrorAlreadyAssigned, serial, "container %s is already aboard ship %s", serial, destination.label())
	}
	c := source.containers[i]
	if err := destination.admit([]Container{c}, nil, source.id); err != nil {
		return err
	}
	source.detachAt(i)
	destination.containers = append(destination.containers, c)
	c.state().ship = destination.id
	return nil
}
