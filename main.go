package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/kestrel-uas/kestrel/api"
	"github.com/kestrel-uas/kestrel/client"
)

func main() {

	if err := func() (rootCmd *cobra.Command) {

		rootCmd = &cobra.Command{
			Use:   "kestrel",
			Short: "KESTREL Drone Survey Operations API",
			Args:  cobra.ArbitraryArgs,
			Run: func(c *cobra.Command, args []string) {
				s := "[1;38;2;58;145;172m"
				e := "[0m"
				fmt.Println("\n🦅 [1mKESTREL[0m · Drone Survey Operations API\nBasic usage:")
				fmt.Printf("  %[1]vkestrel api%[2]v                         [37m# starts a local API server%[2]v\n", s, e)
				fmt.Printf("  %[1]vkestrel register%[2]v [1m-n K1 -m mavic-3%[2]v   [37m# registers a drone%[2]v\n", s, e)
				fmt.Printf("  %[1]vkestrel start%[2]v [1m--mission survey.yaml%[2]v [37m# creates and starts a new mission%[2]v\n", s, e)
				fmt.Printf("  %[1]vkestrel help%[2]v                        [37m# shows help for all commands%[2]v\n", s, e)
				return
			},
		}

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			createCmd = &cobra.Command{
				Use:   "version",
				Short: "Print the version number",
				Run: func(c *cobra.Command, args []string) {
					fmt.Println("v0.1.0")
				},
			}
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			createCmd = &cobra.Command{
				Use:   "api",
				Short: "Run the Kestrel API server",
				Run: func(c *cobra.Command, args []string) {
					configPath, _ := createCmd.Flags().GetString("config")
					a := api.New(configPath)
					go a.Monitor()
					a.Run()
				},
			}
			createCmd.Flags().String("config", "", "path to a config file")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			var definition string
			createCmd = &cobra.Command{
				Use:   "create",
				Short: "Create a new mission without starting it",
				Run: func(c *cobra.Command, args []string) {
					err := client.Create(definition)
					if err != nil {
						panic(err)
					}
				},
			}
			createCmd.Flags().StringVarP(&definition, "mission", "m", "", "File path of the mission definition (JSON or YAML), or inline JSON")
			createCmd.MarkFlagRequired("mission")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			var definition string
			createCmd = &cobra.Command{
				Use:   "start",
				Short: "Create a new mission and start it",
				Run: func(c *cobra.Command, args []string) {
					err := client.Start(definition)
					if err != nil {
						panic(err)
					}
				},
			}
			createCmd.Flags().StringVarP(&definition, "mission", "m", "", "Mission id, file path of the mission definition (JSON or YAML), or inline JSON")
			createCmd.MarkFlagRequired("mission")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			var missionId string
			var action string
			createCmd = &cobra.Command{
				Use:   "control",
				Short: "Apply a lifecycle action to a mission",
				Run: func(c *cobra.Command, args []string) {
					err := client.Control(missionId, action)
					if err != nil {
						panic(err)
					}
				},
			}
			createCmd.Flags().StringVarP(&missionId, "mission-id", "m", "", "The id of the mission")
			createCmd.MarkFlagRequired("mission-id")
			createCmd.Flags().StringVarP(&action, "action", "a", "", "One of: pause, resume, abort, complete")
			createCmd.MarkFlagRequired("action")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			var missionId string
			createCmd = &cobra.Command{
				Use:   "status",
				Short: "Show a mission's progress",
				Run: func(c *cobra.Command, args []string) {
					err := client.Status(missionId)
					if err != nil {
						panic(err)
					}
				},
			}
			createCmd.Flags().StringVarP(&missionId, "mission-id", "m", "", "The id of the mission")
			createCmd.MarkFlagRequired("mission-id")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			var status string
			createCmd = &cobra.Command{
				Use:   "fleet",
				Short: "List every drone in the fleet",
				Run: func(c *cobra.Command, args []string) {
					err := client.Fleet(status)
					if err != nil {
						panic(err)
					}
				},
			}
			createCmd.Flags().StringVarP(&status, "status", "s", "", "Filter drones by status")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			var name string
			var droneModel string
			var batteryLevel int
			createCmd = &cobra.Command{
				Use:   "register",
				Short: "Register a new drone",
				Run: func(c *cobra.Command, args []string) {
					err := client.Register(name, droneModel, batteryLevel)
					if err != nil {
						panic(err)
					}
				},
			}
			createCmd.Flags().StringVarP(&name, "name", "n", "", "A name for the drone")
			createCmd.MarkFlagRequired("name")
			createCmd.Flags().StringVarP(&droneModel, "model", "m", "", "The drone's model")
			createCmd.Flags().IntVarP(&batteryLevel, "battery", "b", 100, "The drone's current battery level")
			return
		}())

		rootCmd.AddCommand(func() (createCmd *cobra.Command) {
			createCmd = &cobra.Command{
				Use:   "demo",
				Short: "Run the API in demo mode",
				Run: func(c *cobra.Command, args []string) {
					demo(createCmd)
				},
			}
			createCmd.Flags().String("config", "", "path to a config file")
			return
		}())

		return
	}().Execute(); err != nil {
		log.Panicln(err)
	}
}
