// Package containers manages the bundled graph-store containers. The Bolt
// adapters use it to launch a Neo4J or Memgraph container next to the
// translator when their UseDocker option is set.
//
// The package uses the official Docker Go SDK directly and keeps the
// lifecycle deliberately simple: pull, create with port bindings, start,
// stop. Ephemeral test containers live in the testing subpackage instead.
package containers

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/dbis-ilm/streamvizzard-provinspector/common"
)

// DefaultDockerSocket is the Docker engine endpoint used when none is
// configured.
const DefaultDockerSocket = "unix:///var/run/docker.sock"

// NewClient creates a Docker API client for the given socket.
func NewClient(socket string) (*client.Client, error) {
	if socket == "" {
		socket = DefaultDockerSocket
	}

	cli, err := client.NewClientWithOpts(client.WithHost(socket), client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return cli, nil
}

// portMap renders host port bindings on 127.0.0.1 for the given
// container-port to host-port pairs.
func portMap(ports map[string]string) (nat.PortSet, nat.PortMap) {
	exposed := nat.PortSet{}
	bindings := nat.PortMap{}

	for containerPort, hostPort := range ports {
		port := nat.Port(containerPort)
		exposed[port] = struct{}{}
		bindings[port] = []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: hostPort}}
	}

	return exposed, bindings
}

// startContainer pulls an image and runs a detached, auto-removed container
// with the given ports and environment.
func startContainer(ctx context.Context, cli *client.Client, name, imageRef string, ports map[string]string, env []string) (string, error) {
	reader, err := cli.ImagePull(ctx, imageRef, image.PullOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	// The pull completes when the progress stream has been drained
	if _, err := io.Copy(io.Discard, reader); err != nil {
		reader.Close()
		return "", fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	reader.Close()

	exposed, bindings := portMap(ports)

	created, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:        imageRef,
			Env:          env,
			ExposedPorts: exposed,
		},
		&container.HostConfig{
			PortBindings: bindings,
			AutoRemove:   true,
		},
		nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", name, err)
	}

	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container %s: %w", name, err)
	}

	common.Logger.WithFields(map[string]interface{}{
		"container": name,
		"image":     imageRef,
		"id":        created.ID[:12],
	}).Info("started graph store container")

	return created.ID, nil
}

// StopContainer stops a container started by this package and closes the
// client. Auto-removal cleans the container up once stopped.
func StopContainer(ctx context.Context, cli *client.Client, containerID string) error {
	defer cli.Close()

	if err := cli.ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop container %s: %w", containerID, err)
	}

	return nil
}
